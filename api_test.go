package customerio

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAPIClient(t *testing.T) (*APIClient, *capturedRequest, *int) {
	t.Helper()

	server, captured, count := newCaptureServer(t)
	client := NewAPIClient("app-key", WithHost(server.URL), WithRetryCount(0))
	t.Cleanup(client.Close)

	return client, captured, count
}

func TestSendEmail(t *testing.T) {
	t.Parallel()

	client, captured, _ := newTestAPIClient(t)

	request := NewSendEmailRequest()
	request.TransactionalMessageID = "3"
	request.To = "x@example.com"
	request.Identifiers = PersonIdentifiers{ID: "42"}
	request.MessageData = map[string]any{"order_id": "A-7"}

	resp, err := client.SendEmail(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp == nil {
		t.Fatal("expected a response")
	}

	if captured.method != "POST" || captured.path != "/v1/send/email" {
		t.Errorf("unexpected request: %s %s", captured.method, captured.path)
	}

	if captured.body["transactional_message_id"] != "3" || captured.body["to"] != "x@example.com" {
		t.Errorf("unexpected payload: %v", captured.body)
	}

	// Defaults from the constructor are always serialized.
	if captured.body["tracked"] != true || captured.body["send_to_unsubscribed"] != true {
		t.Errorf("expected default booleans in payload, got %v", captured.body)
	}
}

func TestAPIClient_BearerAuth(t *testing.T) {
	t.Parallel()

	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewAPIClient("app-key", WithHost(server.URL), WithRetryCount(0))
	defer client.Close()

	request := NewSendEmailRequest()
	request.TransactionalMessageID = "3"
	request.To = "x@example.com"
	request.Identifiers = PersonIdentifiers{ID: "42"}

	if _, err := client.SendEmail(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if authHeader != "Bearer app-key" {
		t.Errorf("expected 'Bearer app-key', got %s", authHeader)
	}
}

func TestSendEmail_MissingIdentifiers(t *testing.T) {
	t.Parallel()

	client, _, count := newTestAPIClient(t)

	request := NewSendEmailRequest()
	request.TransactionalMessageID = "3"
	request.To = "x@example.com"

	_, err := client.SendEmail(context.Background(), request)

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}

	if *count != 0 {
		t.Errorf("expected no request to be sent, got %d", *count)
	}
}

func TestAPIClient_BlankIdentifiers(t *testing.T) {
	t.Parallel()

	client, _, count := newTestAPIClient(t)
	ctx := context.Background()

	// A non-nil identifiers value with every field blank must fail the same
	// way a nil one does.
	tests := []struct {
		name string
		call func() error
	}{
		{"SendEmail", func() error {
			request := NewSendEmailRequest()
			request.TransactionalMessageID = "3"
			request.To = "x@example.com"
			request.Identifiers = PersonIdentifiers{}
			_, err := client.SendEmail(ctx, request)
			return err
		}},
		{"SendPush", func() error {
			request := NewSendPushRequest()
			request.TransactionalMessageID = "5"
			request.Identifiers = PersonIdentifiers{}
			_, err := client.SendPush(ctx, request)
			return err
		}},
		{"SendSMS", func() error {
			request := &SendSMSRequest{TransactionalMessageID: "7", Identifiers: PersonIdentifiers{}}
			_, err := client.SendSMS(ctx, request)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()

			var invalidErr *InvalidArgumentError
			if !errors.As(err, &invalidErr) {
				t.Fatalf("expected InvalidArgumentError, got %v", err)
			}
		})
	}

	if *count != 0 {
		t.Errorf("expected no requests to be sent, got %d", *count)
	}
}

func TestSendEmail_BodyRequiredWithoutTemplate(t *testing.T) {
	t.Parallel()

	client, _, count := newTestAPIClient(t)

	request := NewSendEmailRequest()
	request.To = "x@example.com"
	request.Identifiers = PersonIdentifiers{ID: "42"}
	// no TransactionalMessageID, no Subject/Body

	_, err := client.SendEmail(context.Background(), request)

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}

	if *count != 0 {
		t.Errorf("expected no request to be sent, got %d", *count)
	}
}

func TestSendEmail_NilRequest(t *testing.T) {
	t.Parallel()

	client, _, count := newTestAPIClient(t)

	_, err := client.SendEmail(context.Background(), nil)

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}

	if *count != 0 {
		t.Errorf("expected no request to be sent, got %d", *count)
	}
}

func TestSendEmailRequest_Attach(t *testing.T) {
	t.Parallel()

	request := NewSendEmailRequest()

	if err := request.Attach("report.txt", "hello", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := base64.StdEncoding.EncodeToString([]byte("hello"))
	if request.Attachments["report.txt"] != expected {
		t.Errorf("expected base64 content, got %q", request.Attachments["report.txt"])
	}

	if err := request.Attach("raw.txt", "already-encoded", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if request.Attachments["raw.txt"] != "already-encoded" {
		t.Errorf("expected raw content, got %q", request.Attachments["raw.txt"])
	}
}

func TestSendEmailRequest_AttachDuplicate(t *testing.T) {
	t.Parallel()

	request := NewSendEmailRequest()

	if err := request.Attach("report.txt", "hello", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := request.Attach("report.txt", "world", true)

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError for duplicate attachment, got %v", err)
	}
}

func TestSendPush(t *testing.T) {
	t.Parallel()

	client, captured, _ := newTestAPIClient(t)

	request := NewSendPushRequest()
	request.TransactionalMessageID = "5"
	request.Identifiers = PersonIdentifiers{ID: "42"}

	_, err := client.SendPush(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.path != "/v1/send/push" {
		t.Errorf("unexpected path: %s", captured.path)
	}

	if captured.body["to"] != "all" || captured.body["sound"] != "default" {
		t.Errorf("expected constructor defaults in payload, got %v", captured.body)
	}
}

func TestSendPush_MissingIdentifiers(t *testing.T) {
	t.Parallel()

	client, _, count := newTestAPIClient(t)

	request := NewSendPushRequest()
	request.TransactionalMessageID = "5"

	_, err := client.SendPush(context.Background(), request)

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}

	if *count != 0 {
		t.Errorf("expected no request to be sent, got %d", *count)
	}
}

func TestSendSMS(t *testing.T) {
	t.Parallel()

	client, captured, _ := newTestAPIClient(t)

	request := &SendSMSRequest{
		TransactionalMessageID: "7",
		Identifiers:            PersonIdentifiers{ID: "42"},
		To:                     "+15550100",
	}

	_, err := client.SendSMS(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.path != "/v1/send/sms" {
		t.Errorf("unexpected path: %s", captured.path)
	}

	if captured.body["transactional_message_id"] != "7" || captured.body["to"] != "+15550100" {
		t.Errorf("unexpected payload: %v", captured.body)
	}
}

func TestSendSMS_MissingTemplate(t *testing.T) {
	t.Parallel()

	client, _, count := newTestAPIClient(t)

	request := &SendSMSRequest{Identifiers: PersonIdentifiers{ID: "42"}}

	_, err := client.SendSMS(context.Background(), request)

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}

	if *count != 0 {
		t.Errorf("expected no request to be sent, got %d", *count)
	}
}

func TestSendEmailRequest_PayloadOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	request := NewSendEmailRequest()
	request.To = "x@example.com"
	request.Identifiers = PersonIdentifiers{ID: "42"}
	request.Subject = "Hi"
	request.Body = "<p>Hi</p>"

	payload := request.toPayload()

	for _, key := range []string{"transactional_message_id", "from", "reply_to", "bcc", "attachments", "send_at", "language"} {
		if _, ok := payload[key]; ok {
			t.Errorf("expected %s to be omitted, got %v", key, payload[key])
		}
	}

	if payload["subject"] != "Hi" || payload["body"] != "<p>Hi</p>" {
		t.Errorf("unexpected payload: %v", payload)
	}
}
