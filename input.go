package boundre

import (
	"strings"
	"unicode/utf8"
)

// Input abstracts the source of text to be matched.
// The engine reads text only through this interface, which is what lets a
// BudgetedInput meter every character the engine touches.
type Input interface {
	// Step returns the rune at the given position and its width in bytes.
	// If the position is at or beyond the end of the input, it returns (0, 0).
	Step(pos int) (rune, int)

	// Context returns the rune before the given position, to support boundary checks like \b and ^.
	// At pos 0 it returns (-1, 0).
	Context(pos int) (rune, int)

	// Index returns the byte index of the program's literal prefix in the input
	// at or after pos, or -1 if it does not occur.
	Index(re *Regexp, pos int) int

	// Len returns the input length in bytes.
	Len() int

	// Slice returns the sub-range [start, end) as an Input of the same kind.
	Slice(start, end int) Input

	// String returns the whole input as a string.
	String() string
}

// StringInput implements Input for a string.
type StringInput struct {
	str string
}

func NewStringInput(s string) *StringInput {
	return &StringInput{str: s}
}

func (s *StringInput) Step(pos int) (rune, int) {
	if pos >= len(s.str) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s.str[pos:])
}

func (s *StringInput) Context(pos int) (rune, int) {
	if pos <= 0 {
		return -1, 0
	}
	if pos > len(s.str) {
		pos = len(s.str)
	}
	return utf8.DecodeLastRuneInString(s.str[:pos])
}

func (s *StringInput) Index(re *Regexp, pos int) int {
	if re.prog.Prefix == "" || pos > len(s.str) {
		return -1
	}
	idx := strings.Index(s.str[pos:], re.prog.Prefix)
	if idx == -1 {
		return -1
	}
	return pos + idx
}

func (s *StringInput) Len() int { return len(s.str) }

func (s *StringInput) Slice(start, end int) Input { return NewStringInput(s.str[start:end]) }

func (s *StringInput) String() string { return s.str }
