package customerio

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// ValidateSignature verifies that a webhook request was sent by Customer.io.
//
// timestamp is the value of the X-CIO-Timestamp header, body the raw request
// body, and signature the value of the X-CIO-Signature header (with or
// without its "v0=" prefix). The expected signature is
// HMAC-SHA256(signingKey, "v0:<timestamp>:<body>") hex-encoded, and the
// comparison is constant-time. Any mismatch in timestamp, body or signature
// returns false; mismatched input never causes an error.
//
// Doc: https://customer.io/docs/journeys/webhooks/#securely-verify-requests
func ValidateSignature(signingKey string, timestamp int64, body []byte, signature string) bool {
	payload := append([]byte("v0:"+strconv.FormatInt(timestamp, 10)+":"), body...)

	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write(payload)
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(strings.TrimPrefix(signature, "v0=")))
}
