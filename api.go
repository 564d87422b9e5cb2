package customerio

import (
	"context"
	"encoding/base64"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const apiPrefix = "/v1"

// APIClient talks to the Customer.io App API using an app API key. Every
// request carries bearer authentication with that key.
type APIClient struct {
	*baseClient

	key     string
	baseURL string
}

// NewAPIClient creates an App API client. The regional API hostname is used
// unless overridden with [WithHost].
func NewAPIClient(key string, opts ...Option) *APIClient {
	options := newClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	host := options.host
	if host == "" {
		host = options.region.APIHost
	}

	prefix := options.urlPrefix
	if prefix == "" {
		prefix = apiPrefix
	}

	return &APIClient{
		baseClient: newBaseClient(options),
		key:        key,
		baseURL:    setupBaseURL(host, options.port, prefix),
	}
}

func (c *APIClient) send(ctx context.Context, url string, payload map[string]any) (*Response, error) {
	headers := map[string]string{"Authorization": "Bearer " + c.key}
	return c.sendRequest(ctx, "POST", url, payload, headers, nil)
}

// SendEmail triggers a transactional email message.
func (c *APIClient) SendEmail(ctx context.Context, request *SendEmailRequest) (*Response, error) {
	if request == nil {
		return nil, invalidArgumentf("request cannot be nil in SendEmail")
	}
	if err := request.validate(); err != nil {
		return nil, err
	}

	return c.send(ctx, pathJoin(c.baseURL, "send", "email"), request.toPayload())
}

// SendPush triggers a transactional push notification.
func (c *APIClient) SendPush(ctx context.Context, request *SendPushRequest) (*Response, error) {
	if request == nil {
		return nil, invalidArgumentf("request cannot be nil in SendPush")
	}
	if err := request.validate(); err != nil {
		return nil, err
	}

	return c.send(ctx, pathJoin(c.baseURL, "send", "push"), request.toPayload())
}

// SendSMS triggers a transactional SMS message.
func (c *APIClient) SendSMS(ctx context.Context, request *SendSMSRequest) (*Response, error) {
	if request == nil {
		return nil, invalidArgumentf("request cannot be nil in SendSMS")
	}
	if err := request.validate(); err != nil {
		return nil, err
	}

	return c.send(ctx, pathJoin(c.baseURL, "send", "sms"), request.toPayload())
}

// SendEmailRequest holds the options available when triggering a
// transactional email. Create it with [NewSendEmailRequest] so boolean
// fields get their documented defaults.
type SendEmailRequest struct {
	TransactionalMessageID  string
	To                      string
	Identifiers             Identifiers
	From                    string
	Headers                 map[string]string
	ReplyTo                 string
	BCC                     string
	Subject                 string
	Preheader               string
	Body                    string
	BodyAMP                 string
	BodyPlain               string
	FakeBCC                 string
	DisableMessageRetention bool
	SendToUnsubscribed      bool
	Tracked                 bool
	QueueDraft              bool
	MessageData             map[string]any
	Attachments             map[string]string
	DisableCSSPreprocessing bool
	SendAt                  int64
	Language                string
}

// NewSendEmailRequest returns a request with the API defaults applied:
// messages are tracked and sent to unsubscribed recipients.
func NewSendEmailRequest() *SendEmailRequest {
	return &SendEmailRequest{
		SendToUnsubscribed: true,
		Tracked:            true,
	}
}

// Attach adds an attachment to the message. When encode is true the content
// is base64-encoded first. Attaching under an existing name is an error.
func (r *SendEmailRequest) Attach(name, content string, encode bool) error {
	if r.Attachments == nil {
		r.Attachments = map[string]string{}
	}
	if _, ok := r.Attachments[name]; ok {
		return invalidArgumentf("attachment %s already exists", name)
	}

	if encode {
		content = base64.StdEncoding.EncodeToString([]byte(content))
	}
	r.Attachments[name] = content
	return nil
}

// identifiersNotBlank rejects a nil identifiers value and a value whose
// identifier fields are all blank; ozzo's Required only catches the former.
func identifiersNotBlank(value any) error {
	ids, _ := value.(Identifiers)
	if ids == nil || ids.blank() {
		return errors.New("cannot be blank")
	}
	return nil
}

func (r *SendEmailRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Identifiers, validation.By(identifiersNotBlank)),
		validation.Field(&r.To, validation.Required),
		validation.Field(&r.Subject, validation.Required.When(r.TransactionalMessageID == "")),
		validation.Field(&r.Body, validation.Required.When(r.TransactionalMessageID == "")),
	)
	if err != nil {
		return &InvalidArgumentError{Reason: "invalid SendEmailRequest: " + err.Error()}
	}
	return nil
}

func (r *SendEmailRequest) toPayload() map[string]any {
	p := map[string]any{
		"disable_message_retention": r.DisableMessageRetention,
		"send_to_unsubscribed":      r.SendToUnsubscribed,
		"tracked":                   r.Tracked,
		"queue_draft":               r.QueueDraft,
		"disable_css_preprocessing": r.DisableCSSPreprocessing,
	}
	putNonZero(p, "transactional_message_id", r.TransactionalMessageID)
	putNonZero(p, "to", r.To)
	if r.Identifiers != nil {
		p["identifiers"] = r.Identifiers
	}
	putNonZero(p, "from", r.From)
	if r.Headers != nil {
		p["headers"] = r.Headers
	}
	putNonZero(p, "reply_to", r.ReplyTo)
	putNonZero(p, "bcc", r.BCC)
	putNonZero(p, "subject", r.Subject)
	putNonZero(p, "preheader", r.Preheader)
	putNonZero(p, "body", r.Body)
	putNonZero(p, "body_amp", r.BodyAMP)
	putNonZero(p, "body_plain", r.BodyPlain)
	putNonZero(p, "fake_bcc", r.FakeBCC)
	if r.MessageData != nil {
		p["message_data"] = r.MessageData
	}
	if r.Attachments != nil {
		p["attachments"] = r.Attachments
	}
	if r.SendAt != 0 {
		p["send_at"] = r.SendAt
	}
	putNonZero(p, "language", r.Language)
	return p
}

// SendPushRequest holds the options available when triggering a
// transactional push notification. Create it with [NewSendPushRequest] so
// To and Sound get their documented defaults.
type SendPushRequest struct {
	TransactionalMessageID  string
	To                      string // "all", "last_used", or a device token
	Identifiers             Identifiers
	Title                   string
	Message                 string
	DisableMessageRetention bool
	SendToUnsubscribed      bool
	QueueDraft              bool
	MessageData             map[string]any
	SendAt                  int64
	Language                string
	ImageURL                string
	Link                    string
	CustomData              map[string]any
	CustomDevice            map[string]any
	CustomPayload           map[string]any
	Sound                   string
}

// NewSendPushRequest returns a request with the API defaults applied: sent
// to all devices, default sound, delivered to unsubscribed recipients.
func NewSendPushRequest() *SendPushRequest {
	return &SendPushRequest{
		To:                 "all",
		Sound:              "default",
		SendToUnsubscribed: true,
	}
}

func (r *SendPushRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Identifiers, validation.By(identifiersNotBlank)),
		validation.Field(&r.TransactionalMessageID, validation.Required.When(r.Title == "" && r.Message == "")),
	)
	if err != nil {
		return &InvalidArgumentError{Reason: "invalid SendPushRequest: " + err.Error()}
	}
	return nil
}

func (r *SendPushRequest) toPayload() map[string]any {
	p := map[string]any{
		"disable_message_retention": r.DisableMessageRetention,
		"send_to_unsubscribed":      r.SendToUnsubscribed,
		"queue_draft":               r.QueueDraft,
	}
	putNonZero(p, "transactional_message_id", r.TransactionalMessageID)
	putNonZero(p, "to", r.To)
	if r.Identifiers != nil {
		p["identifiers"] = r.Identifiers
	}
	putNonZero(p, "title", r.Title)
	putNonZero(p, "message", r.Message)
	if r.MessageData != nil {
		p["message_data"] = r.MessageData
	}
	if r.SendAt != 0 {
		p["send_at"] = r.SendAt
	}
	putNonZero(p, "language", r.Language)
	putNonZero(p, "image_url", r.ImageURL)
	putNonZero(p, "link", r.Link)
	if r.CustomData != nil {
		p["custom_data"] = r.CustomData
	}
	if r.CustomDevice != nil {
		p["device"] = r.CustomDevice
	}
	if r.CustomPayload != nil {
		p["custom_payload"] = r.CustomPayload
	}
	putNonZero(p, "sound", r.Sound)
	return p
}

// SendSMSRequest holds the options available when triggering a
// transactional SMS. SMS messages always reference a transactional message
// template.
type SendSMSRequest struct {
	TransactionalMessageID  string
	To                      string
	Identifiers             Identifiers
	DisableMessageRetention bool
	MessageData             map[string]any
	SendAt                  int64
	Language                string
}

func (r *SendSMSRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.TransactionalMessageID, validation.Required),
		validation.Field(&r.Identifiers, validation.By(identifiersNotBlank)),
	)
	if err != nil {
		return &InvalidArgumentError{Reason: "invalid SendSMSRequest: " + err.Error()}
	}
	return nil
}

func (r *SendSMSRequest) toPayload() map[string]any {
	p := map[string]any{
		"transactional_message_id":  r.TransactionalMessageID,
		"disable_message_retention": r.DisableMessageRetention,
	}
	putNonZero(p, "to", r.To)
	if r.Identifiers != nil {
		p["identifiers"] = r.Identifiers
	}
	if r.MessageData != nil {
		p["message_data"] = r.MessageData
	}
	if r.SendAt != 0 {
		p["send_at"] = r.SendAt
	}
	putNonZero(p, "language", r.Language)
	return p
}

func putNonZero(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
