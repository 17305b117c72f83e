package boundre

import (
	"errors"
	"strings"
	"testing"
)

func TestMatchSimple(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"abc", "abc", true},
		{"abc", "xabcy", true},
		{"abc", "ab", false},
		{"a.c", "abc", true},
		{"a.c", "axc", true},
		{"a.c", "ac", false}, // dot needs char
		{"a.c", "a\nc", false},
		{"", "", true},
		{"", "anything", true},
	}

	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.MatchString(tc.input); got != tc.match {
			t.Errorf("MatchString(%q, %q) = %v; want %v", tc.pattern, tc.input, got, tc.match)
		}
	}
}

func TestMatchAlternation(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"a|b", "a", true},
		{"a|b", "b", true},
		{"a|b", "c", false},
		{"foo|bar", "foo", true},
		{"foo|bar", "bar", true},
		{"foo|bar", "baz", false},
		{"a|b|c|d", "xd", true},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.MatchString(tc.input); got != tc.match {
			t.Errorf("MatchString(%q, %q) = %v; want %v", tc.pattern, tc.input, got, tc.match)
		}
	}
}

func TestMatchQuantifier(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    string
	}{
		{"a*", "aaaa", "aaaa"},
		{"a+", "baaa", "aaa"},
		{"a?", "aa", "a"},
		{"a+?", "aaa", "a"},
		{"a*?b", "aaab", "aaab"},
		{"a{2}", "aaaa", "aa"},
		{"a{2,3}", "aaaa", "aaa"},
		{"a{2,}", "aaaaa", "aaaaa"},
		{"a{2,3}?", "aaaa", "aa"},
		{"(?:ab){2}", "abababab", "abab"},
		{"x{0}y", "xy", "y"},
		{"[a-c]{2,3}?d", "abcd", "abcd"},
		{".+b", "ééb", "ééb"},
		{".*é", "aéxéy", "aéxé"},
		{"(?i)A+", "baAa", "aAa"},
		{"[^b]*?b", "xxbb", "xxb"},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.FindString(tc.input); got != tc.want {
			t.Errorf("FindString(%q, %q) = %q; want %q", tc.pattern, tc.input, got, tc.want)
		}
	}

	if MustCompile("^a{2}$").MatchString("a") {
		t.Error("a{2} matched a single a")
	}
	if MustCompile("a+").MatchString("") {
		t.Error("a+ matched the empty string")
	}
}

func TestEmptyLoopTerminates(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"(a*)*b", "b", true},
		{"(a*)*b", "aaac", false},
		{"(a|)*c", "aac", true},
		{"(?:a?)+$", "aaa", true},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.MatchString(tc.input); got != tc.match {
			t.Errorf("MatchString(%q, %q) = %v; want %v", tc.pattern, tc.input, got, tc.match)
		}
	}
}

func TestMatchCharClass(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"[a-z]", "a", true},
		{"[a-z]", "A", false},
		{"[^a-z]", "A", true},
		{"[^a-z]", "a", false},
		{"[abc]+", "cab", true},
		{"[]a]", "]", true},
		{"[a-]", "-", true},
		{`[\d_]`, "_", true},
		{`[\w.]+@`, "a.b@", true},
		{`[*+?]`, "+", true},
		{`\d\s\w`, "1 x", true},
		{`\D`, "1", false},
		{`\S`, " ", false},
		{`\W`, "_", false},
		{"[à-ü]", "é", true},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.MatchString(tc.input); got != tc.match {
			t.Errorf("MatchString(%q, %q) = %v; want %v", tc.pattern, tc.input, got, tc.match)
		}
	}
}

func TestAssertions(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"^abc", "abc", true},
		{"^abc", "xabc", false},
		{"abc$", "xabc", true},
		{"abc$", "abc\n", false},
		{"(?m)^b$", "a\nb\nc", true},
		{"(?m)abc$", "abc\nx", true},
		{`\Aabc`, "abc", true},
		{`\Aabc`, "xabc", false},
		{`(?m)\Ab`, "a\nb", false},
		{`abc\z`, "abc", true},
		{`abc\z`, "abc\n", false},
		{`abc\Z`, "abc\n", true},
		{`abc\Z`, "abc\nx", false},
		{`\bfoo\b`, "a foo b", true},
		{`\bfoo\b`, "afoo", false},
		{`\bfoo\b`, "foo", true},
		{`\Boo\B`, "fool", true},
		{`\Boo`, "oops", false},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.MatchString(tc.input); got != tc.match {
			t.Errorf("MatchString(%q, %q) = %v; want %v", tc.pattern, tc.input, got, tc.match)
		}
	}
}

func TestLookaround(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    string
	}{
		{"foo(?=bar)", "foobaz foobar", "foo"},
		{"foo(?!bar)", "foobar foobaz", "foo"},
		{"(?<=\\$)\\d+", "cost $42", "42"},
		{"(?<!\\$)\\b\\d+", "$42 17", "17"},
		{"(?<=a+)b", "caab", "b"},
		{"(?<=ab|xyz)c", "xyzc", "c"},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.FindString(tc.input); got != tc.want {
			t.Errorf("FindString(%q, %q) = %q; want %q", tc.pattern, tc.input, got, tc.want)
		}
	}

	if idx := MustCompile("foo(?!bar)").FindStringIndex("foobar foobaz"); idx[0] != 7 {
		t.Errorf("negative lookahead matched at %d; want 7", idx[0])
	}
	if MustCompile("(?<=a+)b").MatchString("cb") {
		t.Error("variable-width lookbehind matched without an a")
	}
}

func TestBackreference(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    string
	}{
		{`(a+)b\1`, "xaabaay", "aabaa"},
		{`(\w)\1`, "hello", "ll"},
		{`(?i)(a)\1`, "xaA", "aA"},
		{`(a)|b\1`, "b", ""},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.FindString(tc.input); got != tc.want {
			t.Errorf("FindString(%q, %q) = %q; want %q", tc.pattern, tc.input, got, tc.want)
		}
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		pattern string
		flags   Flags
		input   string
		match   bool
	}{
		{"(?i)abc", 0, "ABC", true},
		{"abc", FoldCase, "aBc", true},
		{"abc", 0, "ABC", false},
		{"(?i:a)b", 0, "Ab", true},
		{"(?i:a)b", 0, "AB", false},
		{"a(?i)b", 0, "aB", true},
		{"a(?i)b", 0, "AB", false},
		{"(a(?i)b)c", 0, "aBc", true},
		{"(a(?i)b)c", 0, "aBC", false},
		{"(?i)[a-c]+", 0, "CAB", true},
		{"(?-i)a", FoldCase, "A", false},
		{"(?s)a.b", 0, "a\nb", true},
		{"a.b", DotNL, "a\nb", true},
		{"^b$", Multiline, "a\nb\nc", true},
		{"(?i)straße", 0, "STRASSE", false},
		{"(?i)k", 0, "K", true}, // Kelvin sign folds to k
	}
	for _, tc := range tests {
		re, err := CompileFlags(tc.pattern, tc.flags)
		if err != nil {
			t.Fatalf("CompileFlags(%q, %v): %v", tc.pattern, tc.flags, err)
		}
		if got := re.MatchString(tc.input); got != tc.match {
			t.Errorf("MatchString(%q/%v, %q) = %v; want %v", tc.pattern, tc.flags, tc.input, got, tc.match)
		}
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags("si")
	if err != nil {
		t.Fatal(err)
	}
	if f != FoldCase|DotNL {
		t.Errorf("ParseFlags(si) = %v", f)
	}
	if f.String() != "is" {
		t.Errorf("String() = %q; want is", f.String())
	}
	if _, err := ParseFlags("ix"); err == nil {
		t.Error("ParseFlags(ix) succeeded")
	}
}

func TestFullMatchString(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"a+", "aaa", true},
		{"a+", "aab", false},
		{"a|ab", "ab", true},
		{"(a|ab)(c|bcd)", "abcd", true},
		{"", "", true},
		{"", "x", false},
		{"a*?", "aaa", true},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		if got := re.FullMatchString(tc.input); got != tc.match {
			t.Errorf("FullMatchString(%q, %q) = %v; want %v", tc.pattern, tc.input, got, tc.match)
		}
	}
}

func TestMatchReader(t *testing.T) {
	re := MustCompile(`\d{3}-\d{4}`)
	ok, err := re.MatchReader(strings.NewReader("call 555-0199 now"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("MatchReader did not find the number")
	}
	ok, err = re.MatchReader(strings.NewReader("no digits"))
	if err != nil || ok {
		t.Errorf("MatchReader = %v, %v; want false, nil", ok, err)
	}
}

func TestCompileErrors(t *testing.T) {
	bad := []string{
		"(",
		"a)",
		"[a",
		"a**",
		"a+*",
		"*",
		"{3}",
		"a{2,1}",
		"a{1001}",
		"(a{1000}){1000}",
		"((a{100}){100}){100}",
		"(?:(?:ab){2}|c){501}",
		"(?=(a{40}){40})",
		`\`,
		"(?P<>a)",
		"(?P<1x>a)",
		"(?P<x>a)(?P<x>b)",
		`\2(a)`,
		"[z-a]",
		`[\D]`,
		"(?z)",
		"(?i",
	}
	for _, pattern := range bad {
		_, err := Compile(pattern)
		if err == nil {
			t.Errorf("Compile(%q) succeeded; want error", pattern)
			continue
		}
		var ce *CompileError
		if !errors.As(err, &ce) || ce.Pattern != pattern {
			t.Errorf("Compile(%q) error %v is not a *CompileError for the pattern", pattern, err)
		}
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	MustCompile("(")
}

func TestLiteralPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		prefix  string
	}{
		{`foo\d+`, "foo"},
		{`(foo)bar`, "foo"},
		{`a|b`, ""},
		{`(?i)abc`, ""},
		{`x*y`, ""},
	}
	for _, tc := range tests {
		if got, _ := MustCompile(tc.pattern).LiteralPrefix(); got != tc.prefix {
			t.Errorf("LiteralPrefix(%q) = %q; want %q", tc.pattern, got, tc.prefix)
		}
	}

	re := MustCompile("foo")
	if idx := re.FindStringIndex("xxfoo"); idx == nil || idx[0] != 2 || idx[1] != 5 {
		t.Errorf("FindStringIndex = %v; want [2 5]", idx)
	}
}

func TestDepthLimit(t *testing.T) {
	re := MustCompile("(?:ab)*")
	input := NewStringInput(strings.Repeat("ab", 100))

	if _, err := re.fullMatch(input, 10); !errors.Is(err, ErrStackExhausted) {
		t.Fatalf("fullMatch with depth 10 = %v; want ErrStackExhausted", err)
	}
	ok, err := re.fullMatch(input, 0)
	if err != nil || !ok {
		t.Errorf("fullMatch with default depth = %v, %v; want true, nil", ok, err)
	}
}

func TestNestedRepeatWithinLimit(t *testing.T) {
	for _, pattern := range []string{"a{1000}", "(a{10}){100}", "(?:a{2}b{500}){2}", "(a{1000})*", "(?:ab{1000}){0}"} {
		if _, err := Compile(pattern); err != nil {
			t.Errorf("Compile(%q) = %v; want success", pattern, err)
		}
	}
	if !MustCompile("^(?:a{10}){100}$").MatchString(strings.Repeat("a", 1000)) {
		t.Error("(?:a{10}){100} did not match 1000 a's")
	}
}

// Single-character repeats run in one frame, so their depth does not grow
// with the input.
func TestSingleCharRepeatDepth(t *testing.T) {
	long := strings.Repeat("x", 3*DefaultMaxDepth)
	tests := []struct {
		pattern string
		input   string
	}{
		{"[a-z]+", long},
		{".*", long},
		{"x*?$", long},
		{"(?i)X+", long},
		{`\d+`, strings.Repeat("7", 3*DefaultMaxDepth)},
		{"x{0,1000}x*", long},
	}
	for _, tc := range tests {
		re := MustCompile(tc.pattern)
		ok, err := re.fullMatch(NewStringInput(tc.input), 0)
		if err != nil || !ok {
			t.Errorf("fullMatch(%q) on %d chars = %v, %v; want true, nil", tc.pattern, len(tc.input), ok, err)
		}
	}

	re := MustCompile("x+y")
	ok, err := re.fullMatch(NewStringInput(long), 16)
	if err != nil || ok {
		t.Errorf("fullMatch(x+y) with depth 16 = %v, %v; want false, nil", ok, err)
	}
}

func TestLongInput(t *testing.T) {
	s := strings.Repeat("ab", 5000) + "c"
	re := MustCompile(`(?:ab)*c`)
	if !re.FullMatchString(s) {
		t.Error("long alternating input did not match")
	}
	if got := len(MustCompile("b").FindAllString(s, -1)); got != 5000 {
		t.Errorf("found %d b's; want 5000", got)
	}
}
