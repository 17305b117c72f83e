package boundre

import (
	"fmt"
	"strings"
)

// EligibleRepetitions is the number of repetition operators at which a
// pattern is metered even without a quantified group.
const EligibleRepetitions = 10

// quantifiedGroups are the textual shapes of a repeated group, the classic
// source of exponential backtracking as in (a+)+.
var quantifiedGroups = []string{")*", ")+", "){"}

// Classification is the static verdict on a pattern's source text.
type Classification struct {
	// Eligible reports whether every match of the pattern must be metered.
	Eligible bool
	// QuantifiedGroup reports whether the source contains )*, )+ or ){.
	QuantifiedGroup bool
	// Repetitions counts ? * + { outside escapes and character classes.
	Repetitions int
	// Quantifiers lists those operators in source order.
	Quantifiers []Token
}

// Classify scans a pattern's source text. It is a textual heuristic, not a
// parse: it may flag safe patterns but never misses a quantified group.
func Classify(src string) Classification {
	c := Classification{Quantifiers: scanRepetitions(src)}
	c.Repetitions = len(c.Quantifiers)
	for _, shape := range quantifiedGroups {
		if strings.Contains(src, shape) {
			c.QuantifiedGroup = true
			break
		}
	}
	c.Eligible = c.QuantifiedGroup || c.Repetitions >= EligibleRepetitions
	return c
}

// Reason describes why the pattern is eligible for metering, or "" if it is not.
func (c Classification) Reason() string {
	switch {
	case c.QuantifiedGroup:
		return "quantified group"
	case c.Eligible:
		return fmt.Sprintf("%d repetition operators", c.Repetitions)
	}
	return ""
}

// scanRepetitions returns the repetition operators of src. An escaped
// character never counts, and inside [...] operators are literal.
func scanRepetitions(src string) []Token {
	var tokens []Token
	inClass, escaped := false, false
	for i, r := range src {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if inClass && r != ']' {
			continue
		}
		switch r {
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '*':
			tokens = append(tokens, Token{Type: TokenStar, Val: r, Start: i, End: i + 1})
		case '+':
			tokens = append(tokens, Token{Type: TokenPlus, Val: r, Start: i, End: i + 1})
		case '?':
			tokens = append(tokens, Token{Type: TokenQuestion, Val: r, Start: i, End: i + 1})
		case '{':
			tokens = append(tokens, Token{Type: TokenLBrace, Val: r, Start: i, End: i + 1})
		}
	}
	return tokens
}
