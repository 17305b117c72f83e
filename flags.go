package boundre

import (
	"fmt"
	"strings"
)

// Flags are compile-time options equivalent to the inline (?ims) flags.
type Flags uint8

const (
	FoldCase  Flags = 1 << iota // i: case-insensitive matching
	Multiline                   // m: ^ and $ match at line boundaries
	DotNL                       // s: . matches \n
)

var flagLetters = []struct {
	flag   Flags
	letter byte
}{
	{FoldCase, 'i'},
	{Multiline, 'm'},
	{DotNL, 's'},
}

// ParseFlags parses the suffix of a /pattern/flags regex literal, e.g. "i" or "ms".
func ParseFlags(s string) (Flags, error) {
	var f Flags
next:
	for i := 0; i < len(s); i++ {
		for _, fl := range flagLetters {
			if s[i] == fl.letter {
				f |= fl.flag
				continue next
			}
		}
		return 0, fmt.Errorf("boundre: unknown regex flag %q", s[i])
	}
	return f, nil
}

// String returns the flags in literal-suffix form.
func (f Flags) String() string {
	var b strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			b.WriteByte(fl.letter)
		}
	}
	return b.String()
}
