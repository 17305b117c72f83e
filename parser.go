package boundre

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxRepeat bounds {n,m} counts, and the product of counts along any chain
// of nested repeats; larger counts expand into programs too big to be useful.
const maxRepeat = 1000

// Parser parses a regex string into an AST.
type Parser struct {
	input string
	pos   int
	// State for capturing groups
	captures int
	names    map[string]int
	flags    parseFlags
	// highest back reference seen, validated once all groups are known
	maxBackref int
}

type parseFlags struct {
	caseInsensitive bool
	multiline       bool
	dotNL           bool
}

func NewParser(input string) *Parser {
	return &Parser{
		input: input,
		names: make(map[string]int),
	}
}

// NewParserFlags returns a parser whose initial inline flags are taken from f.
func NewParserFlags(input string, f Flags) *Parser {
	p := NewParser(input)
	p.flags = parseFlags{
		caseInsensitive: f&FoldCase != 0,
		multiline:       f&Multiline != 0,
		dotNL:           f&DotNL != 0,
	}
	return p
}

func (p *Parser) Parse() (Node, error) {
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("unexpected character at %d: %q", p.pos, p.peek())
	}
	if p.maxBackref > p.captures {
		return nil, fmt.Errorf("invalid back reference \\%d", p.maxBackref)
	}
	return node, nil
}

// parseExpr handles alternation: term | term
func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.input) && p.peek() == '|' {
		p.consume() // eat |
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if alt, ok := right.(*Alternate); ok {
			return &Alternate{Nodes: append([]Node{left}, alt.Nodes...)}, nil
		}
		return &Alternate{Nodes: []Node{left, right}}, nil
	}
	return left, nil
}

// parseTerm handles concatenation: factor factor
func (p *Parser) parseTerm() (Node, error) {
	var nodes []Node
	for p.pos < len(p.input) && p.peek() != '|' && p.peek() != ')' {
		node, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if len(nodes) == 0 {
		return &Literal{}, nil
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return &Concat{Nodes: nodes}, nil
}

// parseFactor handles quantifiers: atom*, atom+, atom?, atom{n,m}
func (p *Parser) parseFactor() (Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	if p.pos >= len(p.input) {
		return atom, nil
	}

	var q *Quantifier
	switch ch := p.peek(); ch {
	case '*', '+', '?':
		p.consume()
		q = &Quantifier{Body: atom, Greedy: true}
		switch ch {
		case '*':
			q.Min, q.Max = 0, -1
		case '+':
			q.Min, q.Max = 1, -1
		default:
			q.Min, q.Max = 0, 1
		}
	case '{':
		p.consume() // eat {
		min, max, err := p.parseRepeat()
		if err != nil {
			return nil, err
		}
		q = &Quantifier{Body: atom, Min: min, Max: max, Greedy: true}
	default:
		return atom, nil
	}

	if p.pos < len(p.input) && p.peek() == '?' {
		p.consume()
		q.Greedy = false
	}
	if p.pos < len(p.input) {
		switch p.peek() {
		case '*', '+', '?', '{':
			return nil, fmt.Errorf("invalid nested repetition operator at %d", p.pos)
		}
	}
	if (q.Min >= 2 || q.Max >= 2) && !repeatIsValid(q, maxRepeat) {
		return nil, fmt.Errorf("expression too large: nested repeat counts exceed %d", maxRepeat)
	}
	return q, nil
}

// repeatIsValid reports whether every chain of nested repeats under node
// multiplies out to at most n copies.
func repeatIsValid(node Node, n int) bool {
	switch node := node.(type) {
	case *Quantifier:
		m := node.Max
		if m == 0 {
			return true
		}
		if m < 0 {
			m = node.Min
		}
		if m > n {
			return false
		}
		if m > 0 {
			n /= m
		}
		return repeatIsValid(node.Body, n)
	case *Capture:
		return repeatIsValid(node.Body, n)
	case *Lookaround:
		return repeatIsValid(node.Body, n)
	case *Concat:
		for _, sub := range node.Nodes {
			if !repeatIsValid(sub, n) {
				return false
			}
		}
	case *Alternate:
		for _, sub := range node.Nodes {
			if !repeatIsValid(sub, n) {
				return false
			}
		}
	}
	return true
}

// parseRepeat parses the body of {n}, {n,} or {n,m}; the brace is already consumed.
func (p *Parser) parseRepeat() (int, int, error) {
	min, ok, err := p.parseInt()
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, fmt.Errorf("invalid quantifier: missing number")
	}
	max := min

	if p.pos < len(p.input) && p.peek() == ',' {
		p.consume() // eat ,
		n, ok, err := p.parseInt()
		if err != nil {
			return 0, 0, err
		}
		if ok {
			max = n
		} else {
			max = -1
		}
	}

	if p.pos >= len(p.input) || p.consume() != '}' {
		return 0, 0, fmt.Errorf("unclosed quantifier")
	}
	if max != -1 && min > max {
		return 0, 0, fmt.Errorf("invalid repeat count {%d,%d}", min, max)
	}
	if min > maxRepeat || max > maxRepeat {
		return 0, 0, fmt.Errorf("repeat count exceeds %d", maxRepeat)
	}
	return min, max, nil
}

func (p *Parser) parseInt() (int, bool, error) {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, false, nil
	}
	n, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return 0, false, fmt.Errorf("invalid quantifier: %v", err)
	}
	return n, true, nil
}

// parseAtom handles literals, groups, char classes
func (p *Parser) parseAtom() (Node, error) {
	fold := p.flags.caseInsensitive
	ch := p.peek()
	switch ch {
	case '(':
		p.consume()
		return p.parseGroup()
	case '[':
		p.consume()
		return p.parseCharClass()
	case '.':
		p.consume()
		if p.flags.dotNL {
			return &CharClass{Negated: true}, nil
		}
		return &CharClass{Negated: true, Ranges: []RuneRange{{Lo: '\n', Hi: '\n'}}}, nil
	case '\\':
		p.consume() // eat \
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("trailing backslash")
		}
		esc := p.consume()
		if esc >= '1' && esc <= '9' {
			idx := int(esc - '0')
			if idx > p.maxBackref {
				p.maxBackref = idx
			}
			return &Backreference{Index: idx, FoldCase: fold}, nil
		}
		if cc, ok := perlClass(esc); ok {
			cc.FoldCase = fold
			return cc, nil
		}
		switch esc {
		case 'b':
			return &Assertion{Kind: AssertWordBoundary}, nil
		case 'B':
			return &Assertion{Kind: AssertNotWordBoundary}, nil
		case 'A':
			return &Assertion{Kind: AssertStringStart}, nil
		case 'Z':
			return &Assertion{Kind: AssertStringEnd}, nil
		case 'z':
			return &Assertion{Kind: AssertAbsoluteEnd}, nil
		}
		return &Literal{Runes: []rune{escapeRune(esc)}, FoldCase: fold}, nil
	case '^':
		p.consume()
		return &Assertion{Kind: AssertStartText, Multiline: p.flags.multiline}, nil
	case '$':
		p.consume()
		return &Assertion{Kind: AssertEndText, Multiline: p.flags.multiline}, nil
	case '*', '+', '?', '{':
		return nil, fmt.Errorf("missing argument to repetition operator: %c", ch)
	case '|', ')':
		return nil, fmt.Errorf("unexpected meta char: %c", ch)
	default:
		p.consume()
		return &Literal{Runes: []rune{ch}, FoldCase: fold}, nil
	}
}

// perlClass expands \d \D \w \W \s \S.
func perlClass(esc rune) (*CharClass, bool) {
	var ranges []RuneRange
	switch unicode.ToLower(esc) {
	case 'd':
		ranges = []RuneRange{{'0', '9'}}
	case 'w':
		ranges = []RuneRange{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
	case 's':
		ranges = []RuneRange{{'\t', '\n'}, {'\f', '\r'}, {' ', ' '}}
	default:
		return nil, false
	}
	return &CharClass{Ranges: ranges, Negated: unicode.IsUpper(esc)}, true
}

func escapeRune(esc rune) rune {
	switch esc {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	}
	return esc
}

func (p *Parser) parseCharClass() (Node, error) {
	// Already consumed [
	negated := false
	if p.peek() == '^' {
		p.consume()
		negated = true
	}

	var ranges []RuneRange

	// A ] right after the opening bracket is literal.
	if p.peek() == ']' {
		p.consume()
		ranges = append(ranges, RuneRange{Lo: ']', Hi: ']'})
	}

	for p.pos < len(p.input) && p.peek() != ']' {
		if p.peek() == '\\' && p.pos+1 < len(p.input) {
			if cc, ok := perlClass(rune(p.input[p.pos+1])); ok {
				if cc.Negated {
					return nil, fmt.Errorf("negated class escape inside character class")
				}
				p.pos += 2
				ranges = append(ranges, cc.Ranges...)
				continue
			}
		}
		r1, err := p.consumeClassChar()
		if err != nil {
			return nil, err
		}

		if p.peek() == '-' && p.pos+1 < len(p.input) && p.input[p.pos+1] != ']' {
			p.consume() // eat -
			r2, err := p.consumeClassChar()
			if err != nil {
				return nil, err
			}
			if r2 < r1 {
				return nil, fmt.Errorf("invalid character class range %c-%c", r1, r2)
			}
			ranges = append(ranges, RuneRange{Lo: r1, Hi: r2})
		} else {
			ranges = append(ranges, RuneRange{Lo: r1, Hi: r1})
		}
	}

	if p.pos >= len(p.input) || p.consume() != ']' {
		return nil, fmt.Errorf("unclosed character class")
	}

	return &CharClass{Ranges: ranges, Negated: negated, FoldCase: p.flags.caseInsensitive}, nil
}

func (p *Parser) consumeClassChar() (rune, error) {
	if p.peek() == '\\' {
		p.consume()
		if p.pos >= len(p.input) {
			return 0, fmt.Errorf("unclosed character class")
		}
		return escapeRune(p.consume()), nil
	}
	return p.consume(), nil
}

func (p *Parser) parseGroup() (Node, error) {
	// Already consumed (
	saved := p.flags
	defer func() { p.flags = saved }()

	if p.peek() != '?' {
		p.captures++
		idx := p.captures
		return p.parseGroupBody(func(body Node) Node {
			return &Capture{Body: body, Index: idx}
		})
	}
	p.consume() // eat ?
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("invalid group syntax")
	}

	switch p.peek() {
	case ':':
		p.consume()
		return p.parseGroupBody(func(body Node) Node { return body })
	case 'P':
		p.consume()
		if p.consume() != '<' {
			return nil, fmt.Errorf("expected < in named group")
		}
		return p.parseNamedGroup()
	case '=':
		p.consume()
		return p.parseLookaround(false, false)
	case '!':
		p.consume()
		return p.parseLookaround(true, false)
	case '<':
		p.consume()
		switch p.peek() {
		case '=':
			p.consume()
			return p.parseLookaround(false, true)
		case '!':
			p.consume()
			return p.parseLookaround(true, true)
		}
		return p.parseNamedGroup()
	}

	// Inline flags: (?i) (?-i) (?im-s) (?i:...)
	on := true
	for p.pos < len(p.input) {
		switch c := p.consume(); c {
		case 'i':
			p.flags.caseInsensitive = on
		case 'm':
			p.flags.multiline = on
		case 's':
			p.flags.dotNL = on
		case '-':
			if !on {
				return nil, fmt.Errorf("invalid flag syntax")
			}
			on = false
		case ')':
			// Flags apply to the rest of the enclosing group.
			saved = p.flags
			return &Literal{}, nil
		case ':':
			return p.parseGroupBody(func(body Node) Node { return body })
		default:
			return nil, fmt.Errorf("invalid group extension: ?%c", c)
		}
	}
	return nil, fmt.Errorf("invalid flag syntax")
}

func (p *Parser) parseNamedGroup() (Node, error) {
	nameEnd := strings.IndexRune(p.input[p.pos:], '>')
	if nameEnd == -1 {
		return nil, fmt.Errorf("unclosed group name")
	}
	name := p.input[p.pos : p.pos+nameEnd]
	if !validGroupName(name) {
		return nil, fmt.Errorf("invalid group name %q", name)
	}
	if _, dup := p.names[name]; dup {
		return nil, fmt.Errorf("duplicate group name %q", name)
	}
	p.pos += nameEnd + 1 // skip name and >

	p.captures++
	idx := p.captures
	p.names[name] = idx
	return p.parseGroupBody(func(body Node) Node {
		return &Capture{Body: body, Index: idx, Name: name}
	})
}

func (p *Parser) parseGroupBody(wrap func(Node) Node) (Node, error) {
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.input) || p.consume() != ')' {
		return nil, fmt.Errorf("unclosed group")
	}
	return wrap(body), nil
}

func (p *Parser) parseLookaround(negative, behind bool) (Node, error) {
	return p.parseGroupBody(func(body Node) Node {
		return &Lookaround{Body: body, Negative: negative, Behind: behind}
	})
}

func validGroupName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// Helpers

func (p *Parser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r
}

func (p *Parser) consume() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	r, w := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += w
	return r
}
