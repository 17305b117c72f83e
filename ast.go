package boundre

import "unicode/utf8"

// NodeType identifies the type of AST node.
type NodeType int

const (
	NodeLiteral NodeType = iota
	NodeConcat
	NodeAlternate
	NodeQuantifier
	NodeCapture
	NodeAssertion
	NodeLookaround
	NodeCharClass
	NodeBackreference
)

// Node is the base interface for AST nodes.
type Node interface {
	Type() NodeType
}

// Literal matches a sequence of runes.
type Literal struct {
	Runes    []rune
	FoldCase bool
}

func (n *Literal) Type() NodeType { return NodeLiteral }

// Concat matches a sequence of nodes.
type Concat struct {
	Nodes []Node
}

func (n *Concat) Type() NodeType { return NodeConcat }

// Alternate matches one of several branches, tried left to right.
type Alternate struct {
	Nodes []Node
}

func (n *Alternate) Type() NodeType { return NodeAlternate }

// Quantifier matches a node repeated Min..Max times.
type Quantifier struct {
	Body   Node
	Min    int
	Max    int // -1 for infinity
	Greedy bool
}

func (n *Quantifier) Type() NodeType { return NodeQuantifier }

// Capture creates a capture group.
type Capture struct {
	Body  Node
	Index int    // 1-based index
	Name  string // Optional name
}

func (n *Capture) Type() NodeType { return NodeCapture }

// AssertionType selects the zero-width test performed by an Assertion.
type AssertionType int

const (
	AssertStartText       AssertionType = iota // ^
	AssertEndText                              // $
	AssertWordBoundary                         // \b
	AssertNotWordBoundary                      // \B
	AssertStringStart                          // \A
	AssertStringEnd                            // \Z
	AssertAbsoluteEnd                          // \z
)

// Assertion matches a position without consuming characters.
type Assertion struct {
	Kind      AssertionType
	Multiline bool // ^ and $ also match at line boundaries
}

func (n *Assertion) Type() NodeType { return NodeAssertion }

// Lookaround is a zero-width assertion that matches a pattern.
type Lookaround struct {
	Body     Node
	Negative bool // True for (?!...) and (?<!...)
	Behind   bool // True for (?<=...) and (?<!...)
}

func (n *Lookaround) Type() NodeType { return NodeLookaround }

// CharClass represents [a-z0-9] or [^a-z].
type CharClass struct {
	Ranges   []RuneRange
	Negated  bool
	FoldCase bool
}

type RuneRange struct {
	Lo, Hi rune
}

func (n *CharClass) Type() NodeType { return NodeCharClass }

// Backreference refers to a previously captured group.
type Backreference struct {
	Index    int // 1-based index of the capture group
	FoldCase bool
}

func (n *Backreference) Type() NodeType { return NodeBackreference }

// fixedWidth reports the byte width every match of n must have.
// Only literal-only subtrees have a width known at compile time.
func fixedWidth(n Node) (int, bool) {
	switch n := n.(type) {
	case *Literal:
		if n.FoldCase {
			return 0, false
		}
		w := 0
		for _, r := range n.Runes {
			w += utf8.RuneLen(r)
		}
		return w, true
	case *Concat:
		total := 0
		for _, sub := range n.Nodes {
			w, ok := fixedWidth(sub)
			if !ok {
				return 0, false
			}
			total += w
		}
		return total, true
	case *Capture:
		return fixedWidth(n.Body)
	case *Assertion, *Lookaround:
		return 0, true
	}
	return 0, false
}

// literalPrefix returns the literal text every match of n starts with.
func literalPrefix(n Node) string {
	switch n := n.(type) {
	case *Literal:
		if n.FoldCase {
			return ""
		}
		return string(n.Runes)
	case *Capture:
		return literalPrefix(n.Body)
	case *Concat:
		prefix := ""
		for _, sub := range n.Nodes {
			lit, ok := sub.(*Literal)
			if !ok || lit.FoldCase {
				if prefix == "" {
					return literalPrefix(sub)
				}
				return prefix
			}
			prefix += string(lit.Runes)
		}
		return prefix
	}
	return ""
}
