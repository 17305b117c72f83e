package boundre

import (
	"errors"
	"fmt"
)

var (
	// ErrBudgetExceeded is reported when a metered match reads more characters
	// than its budget allows.
	ErrBudgetExceeded = errors.New("boundre: regex lookup budget exceeded")

	// ErrStackExhausted is reported when backtracking recursion exceeds the
	// engine's depth limit.
	ErrStackExhausted = errors.New("boundre: backtracking depth exhausted")

	// ErrCircuitOpen marks attempts skipped because the pattern already
	// reached its error limit. Operations absorb it; it only shows up in logs.
	ErrCircuitOpen = errors.New("boundre: pattern disabled after too many interrupted matches")
)

// BudgetError describes an interrupted metered match.
type BudgetError struct {
	InputLen  int // length of the metered input in bytes
	Threshold int // number of bytes the match was allowed to read
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("%v: string length: %d; threshold value: %d", ErrBudgetExceeded, e.InputLen, e.Threshold)
}

func (e *BudgetError) Unwrap() error { return ErrBudgetExceeded }

// CompileError wraps a syntax error with the offending pattern.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("boundre: compile %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
