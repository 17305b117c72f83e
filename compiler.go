package boundre

// Compiler compiles an AST into a VM Program.
type Compiler struct {
	insts  []Inst
	numCap int
	loops  int
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile compiles node; captures is the number of capture groups the parser saw.
func (c *Compiler) Compile(node Node, captures int) (*Prog, error) {
	c.insts = nil // reset
	c.loops = 0
	c.numCap = captures + 1

	// Implicit Capture Group 0 (Whole Match)
	// Save(0) -> Body -> Save(1) -> Match
	c.emit(Inst{Op: OpSave, Idx: 0})
	c.compileNode(node)
	c.emit(Inst{Op: OpSave, Idx: 1})
	c.emit(Inst{Op: OpMatch})

	return &Prog{
		Insts:  c.insts,
		Start:  0,
		NumCap: c.numCap,
		Slots:  2*c.numCap + c.loops,
		Prefix: literalPrefix(node),
	}, nil
}

func (c *Compiler) emit(i Inst) int {
	c.insts = append(c.insts, i)
	return len(c.insts) - 1
}

func (c *Compiler) compileNode(node Node) {
	switch n := node.(type) {
	case *Literal:
		for _, r := range n.Runes {
			c.emit(Inst{Op: OpChar, Val: r, Fold: n.FoldCase})
		}

	case *CharClass:
		c.emit(classInst(n))

	case *Concat:
		for _, sub := range n.Nodes {
			c.compileNode(sub)
		}

	case *Alternate:
		// split L1, next; L1: a; jmp end; next: split L2, ... ; last
		var jumps []int
		for i, sub := range n.Nodes {
			if i == len(n.Nodes)-1 {
				c.compileNode(sub)
				break
			}
			split := c.emit(Inst{Op: OpSplit})
			c.insts[split].Out = len(c.insts)
			c.compileNode(sub)
			jumps = append(jumps, c.emit(Inst{Op: OpJmp}))
			c.insts[split].Out1 = len(c.insts)
		}
		for _, j := range jumps {
			c.insts[j].Out = len(c.insts)
		}

	case *Quantifier:
		c.compileQuantifier(n)

	case *Capture:
		c.emit(Inst{Op: OpSave, Idx: 2 * n.Index})
		c.compileNode(n.Body)
		c.emit(Inst{Op: OpSave, Idx: 2*n.Index + 1})

	case *Assertion:
		c.emit(Inst{Op: OpAssert, Assert: n.Kind, Multiline: n.Multiline})

	case *Backreference:
		c.emit(Inst{Op: OpBackref, Idx: n.Index, Fold: n.FoldCase})

	case *Lookaround:
		// Sub-programs share the parent's capture numbering.
		sub := &Compiler{numCap: c.numCap}
		sub.compileNode(n.Body)
		sub.emit(Inst{Op: OpMatch})
		width := -1
		if w, ok := fixedWidth(n.Body); ok && n.Behind {
			width = w
		}
		c.emit(Inst{
			Op: OpLookaround,
			Prog: &Prog{
				Insts:  sub.insts,
				NumCap: c.numCap,
				Slots:  2*c.numCap + sub.loops,
			},
			LookNeg:    n.Negative,
			LookBehind: n.Behind,
			LookWidth:  width,
		})
	}
}

func classInst(n *CharClass) Inst {
	if n.Negated && len(n.Ranges) == 1 && n.Ranges[0] == (RuneRange{'\n', '\n'}) {
		return Inst{Op: OpAny}
	}
	return Inst{Op: OpCharClass, Ranges: n.Ranges, Negated: n.Negated, Fold: n.FoldCase}
}

// singleItem returns the instruction matching node when node always
// consumes exactly one character and sets no captures.
func singleItem(node Node) (Inst, bool) {
	switch n := node.(type) {
	case *Literal:
		if len(n.Runes) == 1 {
			return Inst{Op: OpChar, Val: n.Runes[0], Fold: n.FoldCase}, true
		}
	case *CharClass:
		return classInst(n), true
	}
	return Inst{}, false
}

// compileQuantifier turns a repeat of a single character into one OpRepeat.
// Anything else is expanded into n copies of x followed by either a star
// loop (m unbounded) or m-n nested optional copies.
func (c *Compiler) compileQuantifier(q *Quantifier) {
	if item, ok := singleItem(q.Body); ok {
		item.Item, item.Op = item.Op, OpRepeat
		item.Min, item.Max, item.Greedy = q.Min, q.Max, q.Greedy
		c.emit(item)
		return
	}
	for i := 0; i < q.Min; i++ {
		c.compileNode(q.Body)
	}
	if q.Max == -1 {
		c.compileStar(q.Body, q.Greedy)
		return
	}
	var exits []int
	for i := q.Min; i < q.Max; i++ {
		split := c.emit(Inst{Op: OpSplit})
		exits = append(exits, split)
		c.insts[split].Out = len(c.insts)
		c.compileNode(q.Body)
	}
	end := len(c.insts)
	for _, split := range exits {
		c.insts[split].Out1 = end
		if !q.Greedy {
			c.insts[split].Out, c.insts[split].Out1 = c.insts[split].Out1, c.insts[split].Out
		}
	}
}

// compileStar emits
//
//	L: split body, end
//	body: mark k; <x>; progress k; jmp L
//	end:
//
// The mark/progress pair rejects iterations that match the empty string, so
// patterns like (a*)* terminate.
func (c *Compiler) compileStar(body Node, greedy bool) {
	slot := 2*c.numCap + c.loops
	c.loops++

	split := c.emit(Inst{Op: OpSplit})
	c.emit(Inst{Op: OpMark, Idx: slot})
	c.compileNode(body)
	c.emit(Inst{Op: OpProgress, Idx: slot})
	c.emit(Inst{Op: OpJmp, Out: split})
	end := len(c.insts)

	if greedy {
		c.insts[split].Out, c.insts[split].Out1 = split+1, end
	} else {
		c.insts[split].Out, c.insts[split].Out1 = end, split+1
	}
}
