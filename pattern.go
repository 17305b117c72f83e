package boundre

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Pattern is a regular expression guarded against catastrophic backtracking.
//
// Patterns whose source looks dangerous, and calls whose input is long
// enough to make an ordinary pattern expensive, run against a BudgetedInput.
// The first MaxErrors budget failures are reported as Unsafe outcomes. Once
// that many have happened the circuit is open: metered calls no longer run
// the engine and return the operation's default.
//
// A Pattern is not safe for concurrent use. Serialize calls or give each
// goroutine its own Clone.
type Pattern struct {
	re     *Regexp
	class  Classification
	opts   options
	errors int
	seq    *BudgetedInput
}

// Key identifies a Pattern for caching: two patterns with equal keys behave
// the same on a fresh error count.
type Key struct {
	Source    string
	Flags     Flags
	MaxErrors int
}

// NewPattern compiles expr with flags and wraps it in a guard.
func NewPattern(expr string, flags Flags, opts ...Option) (*Pattern, error) {
	re, err := CompileFlags(expr, flags)
	if err != nil {
		return nil, err
	}
	return NewPatternFromRegexp(re, opts...)
}

// MustPattern is like NewPattern but panics on error.
func MustPattern(expr string, flags Flags, opts ...Option) *Pattern {
	p, err := NewPattern(expr, flags, opts...)
	if err != nil {
		panic(fmt.Sprintf("boundre: NewPattern(%q): %v", expr, err))
	}
	return p
}

// NewPatternFromRegexp wraps an already compiled expression.
func NewPatternFromRegexp(re *Regexp, opts ...Option) (*Pattern, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case o.maxErrors < 0:
		return nil, fmt.Errorf("boundre: max errors must not be negative, got %d", o.maxErrors)
	case o.ratio <= 0:
		return nil, fmt.Errorf("boundre: ratio must be positive, got %d", o.ratio)
	case o.maxDepth <= 0:
		return nil, fmt.Errorf("boundre: max depth must be positive, got %d", o.maxDepth)
	}
	return &Pattern{
		re:    re,
		class: Classify(re.String()),
		opts:  o,
		seq:   NewBudgetedInput(NewStringInput(""), o.ratio),
	}, nil
}

// Clone returns a Pattern sharing p's compiled program and settings with a
// zero error count.
func (p *Pattern) Clone() *Pattern {
	return &Pattern{
		re:    p.re,
		class: p.class,
		opts:  p.opts,
		seq:   NewBudgetedInput(NewStringInput(""), p.opts.ratio),
	}
}

// Matches reports whether all of text matches the pattern.
func (p *Pattern) Matches(text string) Outcome[bool] {
	in, ok := p.input(text, false)
	if !ok {
		return Outcome[bool]{Verdict: Absorbed}
	}
	found, err := p.re.fullMatch(in, p.opts.maxDepth)
	if err != nil {
		return failed[bool](p, err, len(text))
	}
	if !found {
		return Outcome[bool]{}
	}
	return matched(true)
}

// FirstCapture returns the text of group 1 in the leftmost match. Value is
// "" when nothing matches, when the pattern has no groups, or when group 1
// did not take part in the match; Verdict tells these apart from no match.
func (p *Pattern) FirstCapture(text string) Outcome[string] {
	in, ok := p.input(text, true)
	if !ok {
		return Outcome[string]{Verdict: Absorbed}
	}
	group, found, err := p.re.firstSubmatch(in, 1, p.opts.maxDepth)
	if err != nil {
		return failed[string](p, err, len(text))
	}
	if !found {
		return Outcome[string]{}
	}
	return matched(group)
}

// Count returns the number of successive non-overlapping matches in text.
func (p *Pattern) Count(text string) Outcome[int64] {
	in, ok := p.input(text, true)
	if !ok {
		return Outcome[int64]{Verdict: Absorbed}
	}
	n, err := p.re.count(in, p.opts.maxDepth)
	if err != nil {
		return failed[int64](p, err, len(text))
	}
	if n == 0 {
		return Outcome[int64]{}
	}
	return matched(n)
}

// input picks the Input for one attempt. ok is false when the attempt must
// be metered and the circuit is open.
func (p *Pattern) input(text string, search bool) (in Input, ok bool) {
	if !p.needsMetering(len(text), search) {
		return NewStringInput(text), true
	}
	if p.IsCircuitOpen() {
		p.opts.logger.Debug("skipping guarded match",
			zap.String("pattern", p.re.String()),
			zap.Error(ErrCircuitOpen))
		return nil, false
	}
	return p.seq.Reset(NewStringInput(text)), true
}

// needsMetering applies the static verdict, then estimates the cost of this
// call as n^(repetitions+search), n being the input length, against
// n*DefaultRatio. Search mode retries at every offset, which counts as one
// more repetition. The estimate ignores the configured ratio, which only
// sets the budget of a metered call.
func (p *Pattern) needsMetering(n int, search bool) bool {
	if p.class.Eligible {
		return true
	}
	if n == 0 || p.class.Repetitions == 0 {
		return false
	}
	exp := p.class.Repetitions
	if search {
		exp++
	}
	// math.Pow saturates to +Inf, which compares as expensive.
	risky := math.Pow(float64(n), float64(exp)) >= float64(n)*DefaultRatio
	if risky {
		p.opts.logger.Debug("metering long input",
			zap.String("pattern", p.re.String()),
			zap.Int("input_len", n),
			zap.Int("repetitions", p.class.Repetitions),
			zap.Bool("search", search))
	}
	return risky
}

// failed settles an interrupted attempt. Depth exhaustion is absorbed and
// never counted. A budget failure is counted, then reported while the count
// is within the limit and absorbed past it.
func failed[T any](p *Pattern, err error, n int) Outcome[T] {
	log := p.opts.logger.With(zap.String("pattern", p.re.String()), zap.Int("input_len", n))

	if errors.Is(err, ErrStackExhausted) {
		log.Debug("absorbed guarded match", zap.Error(err))
		return Outcome[T]{Verdict: Absorbed}
	}

	p.errors++
	if p.errors > p.opts.maxErrors {
		return Outcome[T]{Verdict: Absorbed}
	}
	fields := []zap.Field{
		zap.Int("errors", p.errors),
		zap.Int("max_errors", p.opts.maxErrors),
		zap.Error(err),
	}
	var be *BudgetError
	if errors.As(err, &be) {
		fields = append(fields, zap.Int("threshold", be.Threshold))
	}
	log.Warn("regex lookup budget exceeded", fields...)
	if p.IsCircuitOpen() {
		log.Error("pattern disabled for metered matches", zap.Int("max_errors", p.opts.maxErrors))
	}
	return Outcome[T]{Verdict: Unsafe, Err: err}
}

// IsEligibleForMetering reports whether every call is metered regardless of input.
func (p *Pattern) IsEligibleForMetering() bool { return p.class.Eligible }

// Classification returns the static verdict computed at construction.
func (p *Pattern) Classification() Classification { return p.class }

// Repetitions returns the number of repetition operators in the source.
func (p *Pattern) Repetitions() int { return p.class.Repetitions }

// ErrorCount returns the number of budget failures so far. It never decreases.
func (p *Pattern) ErrorCount() int { return p.errors }

// MaxErrors returns the error limit.
func (p *Pattern) MaxErrors() int { return p.opts.maxErrors }

// Ratio returns the reads allowed per byte of input on metered calls.
func (p *Pattern) Ratio() int { return p.opts.ratio }

// IsCircuitOpen reports whether the error limit has been reached. There is
// no way to close it again; Clone the pattern for a fresh count.
func (p *Pattern) IsCircuitOpen() bool { return p.errors == p.opts.maxErrors }

// Regexp returns the underlying compiled expression.
func (p *Pattern) Regexp() *Regexp { return p.re }

// String returns the source text of the pattern.
func (p *Pattern) String() string { return p.re.String() }

// Key returns the identity used to deduplicate compiled predicates.
func (p *Pattern) Key() Key {
	return Key{Source: p.re.String(), Flags: p.re.Flags(), MaxErrors: p.opts.maxErrors}
}

// Equal reports whether p and other have the same Key.
func (p *Pattern) Equal(other *Pattern) bool {
	return other != nil && p.Key() == other.Key()
}
