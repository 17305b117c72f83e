package boundre

import "go.uber.org/zap"

// DefaultMaxErrors is the number of interrupted matches a Pattern reports
// before it stops running the engine.
const DefaultMaxErrors = 200

type options struct {
	maxErrors int
	ratio     int
	maxDepth  int
	logger    *zap.Logger
}

func defaultOptions() options {
	return options{
		maxErrors: DefaultMaxErrors,
		ratio:     DefaultRatio,
		maxDepth:  DefaultMaxDepth,
		logger:    zap.NewNop(),
	}
}

// Option configures a Pattern.
type Option func(*options)

// WithMaxErrors sets how many budget failures are reported before the
// pattern's circuit opens. Zero opens it from the start for metered calls.
func WithMaxErrors(n int) Option {
	return func(o *options) { o.maxErrors = n }
}

// WithRatio sets the reads allowed per byte of input on metered calls.
func WithRatio(r int) Option {
	return func(o *options) { o.ratio = r }
}

// WithMaxDepth sets the backtracking depth limit.
func WithMaxDepth(d int) Option {
	return func(o *options) { o.maxDepth = d }
}

// WithLogger sets the logger for budget failures and circuit state changes.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
