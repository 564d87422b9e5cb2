package customerio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestHCLogAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "customerio",
		Level:  hclog.Debug,
		Output: &buf,
	})

	adapter := NewHCLogAdapter(logger)

	adapter.Debugf("retrying request %d", 2)
	adapter.Warnf("slow response: %s", "1.2s")
	adapter.Errorf("request failed: %v", "boom")

	out := buf.String()

	for _, want := range []string{"retrying request 2", "slow response: 1.2s", "request failed: boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got %q", want, out)
		}
	}
}

func TestNewHCLogAdapter_NilLogger(t *testing.T) {
	t.Parallel()

	adapter := NewHCLogAdapter(nil)

	if adapter.logger == nil {
		t.Error("expected nil logger to fall back to the default")
	}
}
