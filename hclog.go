package customerio

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// HCLogAdapter adapts a [hclog.Logger] to the [RequestLogger] interface so
// applications built on hashicorp/go-hclog can plug their logger straight
// into [WithRequestLogger].
type HCLogAdapter struct {
	logger hclog.Logger
}

// NewHCLogAdapter wraps logger; a nil logger falls back to hclog.Default().
func NewHCLogAdapter(logger hclog.Logger) *HCLogAdapter {
	if logger == nil {
		logger = hclog.Default()
	}
	return &HCLogAdapter{logger: logger}
}

func (a *HCLogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

func (a *HCLogAdapter) Warnf(format string, v ...any) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

func (a *HCLogAdapter) Debugf(format string, v ...any) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}
