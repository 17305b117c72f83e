// Package boundre is a backtracking regular expression engine paired with a
// cost guard for evaluating untrusted patterns against untrusted text.
//
// Regexp is the engine. It reads its input only through the Input interface,
// so every character it touches can be counted. Pattern wraps a Regexp for
// use inside JSON filter predicates: it classifies the pattern once, meters
// risky matches with a BudgetedInput, and after too many interrupted matches
// stops running the pattern at all.
package boundre

import (
	"fmt"
	"io"
)

type Regexp struct {
	expr        string
	flags       Flags
	prog        *Prog
	subexpNames []string
}

// Compile parses a regular expression and returns, if successful, a Regexp
// that can be used to match against text.
func Compile(expr string) (*Regexp, error) {
	return CompileFlags(expr, 0)
}

// CompileFlags is like Compile with flags applied as if the pattern began
// with the matching inline group, e.g. FoldCase as (?i).
func CompileFlags(expr string, flags Flags) (*Regexp, error) {
	parser := NewParserFlags(expr, flags)
	node, err := parser.Parse()
	if err != nil {
		return nil, &CompileError{Pattern: expr, Err: err}
	}

	prog, err := NewCompiler().Compile(node, parser.captures)
	if err != nil {
		return nil, &CompileError{Pattern: expr, Err: err}
	}

	names := make([]string, parser.captures+1)
	for name, idx := range parser.names {
		names[idx] = name
	}

	return &Regexp{
		expr:        expr,
		flags:       flags,
		prog:        prog,
		subexpNames: names,
	}, nil
}

func MustCompile(expr string) *Regexp {
	re, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("boundre: Compile(%q): %v", expr, err))
	}
	return re
}

// NumSubexp returns the number of parenthesized subexpressions in this Regexp.
func (re *Regexp) NumSubexp() int {
	return len(re.subexpNames) - 1
}

// SubexpNames returns the names of the parenthesized subexpressions
// in this Regexp. The first element is the full match (unnamed).
func (re *Regexp) SubexpNames() []string {
	return re.subexpNames
}

// SubexpIndex returns the index of the first subexpression with the given name,
// or -1 if there is no subexpression with that name.
func (re *Regexp) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range re.subexpNames {
		if n == name {
			return i
		}
	}
	return -1
}

// String returns the source text used to compile the regular expression.
func (re *Regexp) String() string {
	return re.expr
}

// Flags returns the flags the expression was compiled with.
func (re *Regexp) Flags() Flags {
	return re.flags
}

// LiteralPrefix returns a literal string that must begin any match of re.
// complete is always false; the engine does not track whether the prefix is
// the whole expression.
func (re *Regexp) LiteralPrefix() (prefix string, complete bool) {
	return re.prog.Prefix, false
}

func (re *Regexp) newVM(input Input, maxDepth int) *VM {
	vm := NewVM(re.prog, input)
	if maxDepth > 0 {
		vm.maxDepth = maxDepth
	}
	return vm
}

// halted returns the error that stopped vm, including a budget failure
// raised by the search loop's own reads.
func (vm *VM) halted() error {
	if vm.err == nil && vm.meter != nil {
		vm.err = vm.meter.Err()
	}
	return vm.err
}

// search returns the capture positions of the leftmost match starting at or
// after pos, or nil if there is none.
func (re *Regexp) search(vm *VM, input Input, pos int) ([]int, error) {
	n := input.Len()
	for pos <= n {
		if re.prog.Prefix != "" {
			next := input.Index(re, pos)
			if next < 0 {
				return nil, vm.halted()
			}
			pos = next
		}

		matched, caps := vm.Run(pos)
		if err := vm.halted(); err != nil {
			return nil, err
		}
		if matched {
			return caps, nil
		}

		_, w := input.Step(pos)
		if w == 0 {
			break
		}
		pos += w
	}
	return nil, vm.halted()
}

// each calls fn with the captures of successive non-overlapping matches,
// at most n of them when n >= 0, until fn returns false. After an empty
// match the search resumes one character further on.
func (re *Regexp) each(input Input, n, maxDepth int, fn func(caps []int) bool) error {
	vm := re.newVM(input, maxDepth)
	pos, found := 0, 0
	for (n < 0 || found < n) && pos <= input.Len() {
		caps, err := re.search(vm, input, pos)
		if err != nil {
			return err
		}
		if caps == nil {
			return nil
		}
		found++
		if !fn(caps) {
			return nil
		}
		pos = caps[1]
		if caps[0] == caps[1] {
			_, w := input.Step(pos)
			if w == 0 {
				break
			}
			pos += w
		}
	}
	return vm.halted()
}

// fullMatch reports whether the whole input matches.
func (re *Regexp) fullMatch(input Input, maxDepth int) (bool, error) {
	vm := re.newVM(input, maxDepth)
	vm.endAt = input.Len()
	matched, _ := vm.Run(0)
	if err := vm.halted(); err != nil {
		return false, err
	}
	return matched, nil
}

// firstSubmatch returns the text of group idx in the leftmost match.
// ok is false when there is no match.
func (re *Regexp) firstSubmatch(input Input, idx, maxDepth int) (text string, ok bool, err error) {
	caps, err := re.search(re.newVM(input, maxDepth), input, 0)
	if err != nil || caps == nil {
		return "", false, err
	}
	if idx >= re.prog.NumCap || caps[2*idx] < 0 {
		return "", true, nil
	}
	return input.Slice(caps[2*idx], caps[2*idx+1]).String(), true, nil
}

// count returns the number of successive matches in input.
func (re *Regexp) count(input Input, maxDepth int) (int64, error) {
	var n int64
	err := re.each(input, -1, maxDepth, func([]int) bool {
		n++
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// MatchString reports whether s contains any match of re.
func (re *Regexp) MatchString(s string) bool {
	return re.match(NewStringInput(s))
}

// MatchReader reports whether the text read from r contains any match of re.
func (re *Regexp) MatchReader(r io.Reader) (bool, error) {
	input, err := NewReaderInput(r)
	if err != nil {
		return false, err
	}
	return re.match(input), nil
}

func (re *Regexp) match(input Input) bool {
	caps, err := re.search(re.newVM(input, 0), input, 0)
	return err == nil && caps != nil
}

// FullMatchString reports whether all of s matches re.
func (re *Regexp) FullMatchString(s string) bool {
	ok, err := re.fullMatch(NewStringInput(s), 0)
	return err == nil && ok
}

func submatchStrings(s string, caps []int) []string {
	result := make([]string, len(caps)/2)
	for i := range result {
		if start, end := caps[2*i], caps[2*i+1]; start >= 0 && end >= start {
			result[i] = s[start:end]
		}
	}
	return result
}

// FindStringSubmatch returns the text of the leftmost match of re in s and
// of its subexpressions, or nil if there is no match.
func (re *Regexp) FindStringSubmatch(s string) []string {
	input := NewStringInput(s)
	caps, err := re.search(re.newVM(input, 0), input, 0)
	if err != nil || caps == nil {
		return nil
	}
	return submatchStrings(s, caps)
}

// FindString returns the leftmost match of the regular expression in s.
// Returns empty string if no match found.
func (re *Regexp) FindString(s string) string {
	match := re.FindStringIndex(s)
	if match == nil {
		return ""
	}
	return s[match[0]:match[1]]
}

// FindStringIndex returns a two-element slice of integers defining the location
// of the leftmost match in s. Returns nil if no match found.
func (re *Regexp) FindStringIndex(s string) []int {
	input := NewStringInput(s)
	caps, err := re.search(re.newVM(input, 0), input, 0)
	if err != nil || caps == nil {
		return nil
	}
	return []int{caps[0], caps[1]}
}

// FindAllString returns up to n successive matches of re in s; n < 0 means all.
func (re *Regexp) FindAllString(s string, n int) []string {
	var results []string
	_ = re.each(NewStringInput(s), n, 0, func(caps []int) bool {
		results = append(results, s[caps[0]:caps[1]])
		return true
	})
	return results
}

// FindAllStringSubmatch returns a slice of all successive matches of the expression,
// as defined by FindStringSubmatch. n < 0 means return all matches.
func (re *Regexp) FindAllStringSubmatch(s string, n int) [][]string {
	var results [][]string
	_ = re.each(NewStringInput(s), n, 0, func(caps []int) bool {
		results = append(results, submatchStrings(s, caps))
		return true
	})
	return results
}

// FindAllStringIndex returns a slice of all successive matches of the expression,
// as two-element slices of integers. n < 0 means return all matches.
func (re *Regexp) FindAllStringIndex(s string, n int) [][]int {
	var results [][]int
	_ = re.each(NewStringInput(s), n, 0, func(caps []int) bool {
		results = append(results, []int{caps[0], caps[1]})
		return true
	})
	return results
}

// Split slices s into substrings separated by the expression and returns a slice of
// the substrings between those expression matches. n < 0 means return all substrings.
func (re *Regexp) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	// n-1 is negative for n < 0, which asks for every match.
	matches := re.FindAllStringIndex(s, n-1)

	result := make([]string, 0, len(matches)+1)
	prev := 0
	for _, match := range matches {
		if match[1] == 0 {
			// an empty match at the start separates nothing
			continue
		}
		result = append(result, s[prev:match[0]])
		prev = match[1]
	}
	return append(result, s[prev:])
}
