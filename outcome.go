package boundre

// Verdict classifies a guarded match attempt.
type Verdict uint8

const (
	// NotMatched means the engine ran to completion and found nothing.
	NotMatched Verdict = iota
	// Matched means the engine ran to completion and found a match.
	Matched
	// Unsafe means the attempt was interrupted by its budget and the failure
	// is reported to the caller; Err holds the *BudgetError.
	Unsafe
	// Absorbed means the attempt was skipped or abandoned without an error:
	// the pattern's circuit is open, backtracking ran out of depth, or the
	// error limit was already passed. Value is the operation's default.
	Absorbed
)

func (v Verdict) String() string {
	switch v {
	case NotMatched:
		return "not-matched"
	case Matched:
		return "matched"
	case Unsafe:
		return "unsafe"
	case Absorbed:
		return "absorbed"
	}
	return "unknown"
}

// Outcome is the result of a guarded operation. For every verdict other
// than Matched, Value is the zero value: false, "" or 0.
type Outcome[T any] struct {
	Value   T
	Verdict Verdict
	Err     error
}

// Result returns the outcome in (value, error) form. The error is non-nil
// only for Unsafe outcomes and wraps ErrBudgetExceeded.
func (o Outcome[T]) Result() (T, error) {
	return o.Value, o.Err
}

func matched[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Verdict: Matched}
}
