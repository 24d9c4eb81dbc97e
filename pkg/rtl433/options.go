package rtl433

import (
	"github.com/sirupsen/logrus"
)

// AnalyzeOptions configures the one-shot helpers.
type AnalyzeOptions struct {
	// Tracker applies debounce history across calls. Nil means a fresh
	// tracker per call.
	Tracker *Tracker
	Logger  logrus.FieldLogger
}

func (opts AnalyzeOptions) decoderOptions() []Option {
	var out []Option
	if opts.Tracker != nil {
		out = append(out, WithTracker(opts.Tracker))
	}
	if opts.Logger != nil {
		out = append(out, WithLogger(opts.Logger))
	}
	return out
}
