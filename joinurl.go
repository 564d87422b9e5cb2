package customerio

import (
	"net/url"
	"strings"
)

// joinURL composes base and the given path segments into a single URL.
// Trailing slashes on the base and surrounding slashes on each segment are
// stripped before joining; each segment is percent-encoded individually, so
// a slash inside a segment is encoded rather than treated as a path
// separator. Query parameters, when present, are appended as a sorted
// URL-encoded query string; the output is deterministic for identical input.
func joinURL(base string, segments []string, params url.Values, leadingSlash, trailingSlash bool) string {
	u := strings.TrimRight(base, "/")

	if len(segments) > 0 {
		encoded := make([]string, 0, len(segments)+1)
		encoded = append(encoded, u)
		for _, s := range segments {
			encoded = append(encoded, url.PathEscape(strings.Trim(s, "/")))
		}
		u = strings.Join(encoded, "/")
	}

	if trailingSlash && !strings.HasSuffix(u, "/") {
		u += "/"
	}
	if leadingSlash && !strings.HasPrefix(u, "/") {
		u = "/" + u
	}

	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	return u
}

// pathJoin is the common no-params, no-flags form of joinURL.
func pathJoin(base string, segments ...string) string {
	return joinURL(base, segments, nil, false, false)
}
