package boundre

import "fmt"

type OpCode int

const (
	OpMatch      OpCode = iota // Terminate success
	OpChar                     // Match specific rune
	OpCharClass                // Match char class
	OpAny                      // Match any rune except newline
	OpJmp                      // Jump to Out
	OpSplit                    // Splits execution (try Out, else Out1)
	OpSave                     // Save position to capture register
	OpAssert                   // Zero-width assertion
	OpLookaround               // Recursive check for lookaround
	OpBackref                  // Match text of a previous capture
	OpMark                     // Record loop iteration start in slot Idx
	OpProgress                 // Fail if the loop iteration recorded in Idx consumed nothing
	OpRepeat                   // Repeat a single-character Item Min..Max times in one frame
)

type Inst struct {
	Op         OpCode
	Val        rune          // For OpChar
	Fold       bool          // For OpChar, OpCharClass, OpBackref
	Ranges     []RuneRange   // For OpCharClass
	Negated    bool          // For OpCharClass
	Out        int           // Jump target 1 (primary)
	Out1       int           // Jump target 2 (alternative for Split)
	Idx        int           // Register index for OpSave, OpMark, OpProgress; group for OpBackref
	Assert     AssertionType // For OpAssert
	Multiline  bool          // For OpAssert
	Prog       *Prog         // For OpLookaround (sub-routine)
	LookNeg    bool          // Negative lookaround
	LookBehind bool          // Lookbehind
	LookWidth  int           // Fixed lookbehind width in bytes, -1 if variable
	Item       OpCode        // For OpRepeat: OpChar, OpCharClass or OpAny
	Min, Max   int           // For OpRepeat; Max is -1 when unbounded
	Greedy     bool          // For OpRepeat
}

// Prog is a compiled regular expression program.
type Prog struct {
	Insts  []Inst
	Start  int    // Entry point
	NumCap int    // Number of capture groups, including the whole match
	Slots  int    // Registers a VM run needs: 2*NumCap plus loop marks
	Prefix string // Literal text every match starts with, if any
}

func (i Inst) String() string {
	switch i.Op {
	case OpMatch:
		return "match"
	case OpChar:
		return fmt.Sprintf("char %q", i.Val)
	case OpCharClass:
		neg := ""
		if i.Negated {
			neg = "^"
		}
		return fmt.Sprintf("class %s%v", neg, i.Ranges)
	case OpAny:
		return "any"
	case OpJmp:
		return fmt.Sprintf("jmp %d", i.Out)
	case OpSplit:
		return fmt.Sprintf("split %d, %d", i.Out, i.Out1)
	case OpSave:
		return fmt.Sprintf("save %d", i.Idx)
	case OpAssert:
		return fmt.Sprintf("assert %d", i.Assert)
	case OpLookaround:
		return fmt.Sprintf("look neg=%v behind=%v", i.LookNeg, i.LookBehind)
	case OpBackref:
		return fmt.Sprintf("backref %d", i.Idx)
	case OpMark:
		return fmt.Sprintf("mark %d", i.Idx)
	case OpProgress:
		return fmt.Sprintf("progress %d", i.Idx)
	case OpRepeat:
		item := i
		item.Op = i.Item
		lazy := ""
		if !i.Greedy {
			lazy = "?"
		}
		return fmt.Sprintf("repeat{%d,%d}%s %s", i.Min, i.Max, lazy, item)
	}
	return "?"
}
