package boundre

import (
	"sync"
	"unicode"
)

// DefaultMaxDepth bounds backtracking recursion. Go cannot recover from a
// real stack overflow, so the VM gives up well before one.
const DefaultMaxDepth = 1 << 18

// Pool for capture slice allocations to reduce GC pressure
var capsPool = sync.Pool{
	New: func() interface{} {
		return make([]int, 0, 20)
	},
}

// meter is implemented by inputs that can abort a run, such as BudgetedInput.
type meter interface {
	Err() error
}

// VM executes the regex program.
type VM struct {
	prog     *Prog
	input    Input
	meter    meter
	endAt    int // required end position of a match, -1 for any
	depth    int
	maxDepth int
	err      error
}

func NewVM(prog *Prog, input Input) *VM {
	vm := &VM{prog: prog, input: input, endAt: -1, maxDepth: DefaultMaxDepth}
	if m, ok := input.(meter); ok {
		vm.meter = m
	}
	return vm
}

// Err returns the failure that aborted the last run, if any.
func (vm *VM) Err() error { return vm.err }

// Run executes the VM starting at the given position.
// Returns true if match found, and the capture positions.
func (vm *VM) Run(pos int) (bool, []int) {
	poolCaps := capsPool.Get().([]int)
	caps := poolCaps[:0]

	needed := vm.prog.Slots
	if cap(caps) < needed {
		caps = make([]int, needed)
	} else {
		caps = caps[:needed]
	}
	for i := range caps {
		caps[i] = -1
	}

	if _, matched := vm.match(vm.prog.Start, pos, caps); matched {
		// Caller keeps the slice; it does not go back to the pool.
		return true, caps[:2*vm.prog.NumCap]
	}

	capsPool.Put(caps)
	return false, nil
}

// match is the backtracking core. It returns the position after the match.
func (vm *VM) match(pc int, pos int, caps []int) (int, bool) {
	vm.depth++
	defer func() { vm.depth-- }()
	if vm.depth > vm.maxDepth {
		vm.err = ErrStackExhausted
		return -1, false
	}

	for {
		if vm.err == nil && vm.meter != nil {
			vm.err = vm.meter.Err()
		}
		if vm.err != nil || pc >= len(vm.prog.Insts) {
			return -1, false
		}

		inst := &vm.prog.Insts[pc]

		switch inst.Op {
		case OpMatch:
			if vm.endAt >= 0 && pos != vm.endAt {
				return -1, false
			}
			return pos, true

		case OpChar:
			r, w := vm.input.Step(pos)
			if w == 0 || !runeEqual(r, inst.Val, inst.Fold) {
				return -1, false
			}
			pos += w
			pc++

		case OpCharClass:
			r, w := vm.input.Step(pos)
			if w == 0 { // EOF
				return -1, false
			}
			if !matchClass(r, inst.Ranges, inst.Negated, inst.Fold) {
				return -1, false
			}
			pos += w
			pc++

		case OpAny:
			r, w := vm.input.Step(pos)
			if w == 0 || r == '\n' {
				return -1, false
			}
			pos += w
			pc++

		case OpJmp:
			pc = inst.Out

		case OpSplit:
			if endPos, ok := vm.attempt(inst.Out, pos, caps); ok {
				return endPos, true
			}
			// Second branch continues in this frame.
			pc = inst.Out1

		case OpRepeat:
			return vm.repeat(inst, pc, pos, caps)

		case OpSave, OpMark:
			caps[inst.Idx] = pos
			pc++

		case OpProgress:
			if caps[inst.Idx] == pos {
				return -1, false
			}
			pc++

		case OpAssert:
			if !vm.checkAssertion(inst, pos) {
				return -1, false
			}
			pc++

		case OpBackref:
			end, ok := vm.matchBackref(inst, pos, caps)
			if !ok {
				return -1, false
			}
			pos = end
			pc++

		case OpLookaround:
			if vm.lookaround(inst, pos) == inst.LookNeg {
				return -1, false
			}
			pc++
		}
	}
}

// attempt runs the program from pc on a copy of caps, keeping the copy only
// if the run matches.
func (vm *VM) attempt(pc, pos int, caps []int) (int, bool) {
	poolCaps := capsPool.Get().([]int)
	capsCopy := poolCaps[:0]
	if cap(capsCopy) < len(caps) {
		capsCopy = make([]int, len(caps))
	} else {
		capsCopy = capsCopy[:len(caps)]
	}
	copy(capsCopy, caps)

	endPos, ok := vm.match(pc, pos, capsCopy)
	if ok {
		copy(caps, capsCopy)
	}
	capsPool.Put(capsCopy)
	return endPos, ok
}

// repeat matches inst.Item between inst.Min and inst.Max times and then the
// rest of the program. A greedy repeat scans as far as it can and gives back
// one character at a time; a lazy one takes one more character per failure.
// Either way the recursion depth stays constant in the input length.
func (vm *VM) repeat(inst *Inst, pc, pos int, caps []int) (int, bool) {
	n := 0
	for ; n < inst.Min; n++ {
		w, ok := vm.single(inst, pos)
		if !ok {
			return -1, false
		}
		pos += w
	}

	if !inst.Greedy {
		for {
			if end, ok := vm.attempt(pc+1, pos, caps); ok {
				return end, true
			}
			if vm.err != nil || (inst.Max >= 0 && n >= inst.Max) {
				return -1, false
			}
			w, ok := vm.single(inst, pos)
			if !ok {
				return -1, false
			}
			pos += w
			n++
		}
	}

	for inst.Max < 0 || n < inst.Max {
		w, ok := vm.single(inst, pos)
		if !ok {
			break
		}
		pos += w
		n++
	}
	for {
		if end, ok := vm.attempt(pc+1, pos, caps); ok {
			return end, true
		}
		if vm.err != nil || n == inst.Min {
			return -1, false
		}
		_, w := vm.input.Context(pos)
		if w == 0 {
			return -1, false
		}
		pos -= w
		n--
	}
}

// single matches one character of a repeat's item at pos.
func (vm *VM) single(inst *Inst, pos int) (int, bool) {
	r, w := vm.input.Step(pos)
	if w == 0 {
		return 0, false
	}
	switch inst.Item {
	case OpChar:
		return w, runeEqual(r, inst.Val, inst.Fold)
	case OpAny:
		return w, r != '\n'
	default:
		return w, matchClass(r, inst.Ranges, inst.Negated, inst.Fold)
	}
}

// lookaround runs the sub-program of inst and reports whether it matched at pos.
func (vm *VM) lookaround(inst *Inst, pos int) bool {
	sub := &VM{
		prog:     inst.Prog,
		input:    vm.input,
		meter:    vm.meter,
		endAt:    -1,
		depth:    vm.depth,
		maxDepth: vm.maxDepth,
	}
	try := func(start int) bool {
		caps := make([]int, inst.Prog.Slots)
		for i := range caps {
			caps[i] = -1
		}
		_, ok := sub.match(inst.Prog.Start, start, caps)
		return ok
	}

	matched := false
	switch {
	case !inst.LookBehind:
		matched = try(pos)
	case inst.LookWidth >= 0:
		// Fixed width: only one start position can end at pos.
		sub.endAt = pos
		if start := pos - inst.LookWidth; start >= 0 {
			matched = try(start)
		}
	default:
		sub.endAt = pos
		for i := pos; i >= 0 && !matched && sub.err == nil; i-- {
			matched = try(i)
		}
	}
	if sub.err != nil {
		vm.err = sub.err
		return false
	}
	return matched
}

func (vm *VM) matchBackref(inst *Inst, pos int, caps []int) (int, bool) {
	start, end := caps[2*inst.Idx], caps[2*inst.Idx+1]
	if start < 0 || end < start {
		return -1, false
	}
	for start < end {
		want, w1 := vm.input.Step(start)
		got, w2 := vm.input.Step(pos)
		if w1 == 0 || w2 == 0 || !runeEqual(got, want, inst.Fold) {
			return -1, false
		}
		start += w1
		pos += w2
	}
	return pos, true
}

func runeEqual(r, want rune, fold bool) bool {
	if r == want {
		return true
	}
	if !fold {
		return false
	}
	for f := unicode.SimpleFold(want); f != want; f = unicode.SimpleFold(f) {
		if f == r {
			return true
		}
	}
	return false
}

// matchClass checks if rune r matches the character class.
func matchClass(r rune, ranges []RuneRange, negated, fold bool) bool {
	matched := inRanges(r, ranges)
	if !matched && fold {
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			if inRanges(f, ranges) {
				matched = true
				break
			}
		}
	}
	return matched != negated
}

func inRanges(r rune, ranges []RuneRange) bool {
	// Fast path for single range (common with \d and [a-z])
	if len(ranges) == 1 {
		return r >= ranges[0].Lo && r <= ranges[0].Hi
	}
	for _, rng := range ranges {
		if r >= rng.Lo && r <= rng.Hi {
			return true
		}
	}
	return false
}

func (vm *VM) checkAssertion(inst *Inst, pos int) bool {
	switch inst.Assert {
	case AssertStartText:
		if pos == 0 {
			return true
		}
		if inst.Multiline {
			prev, _ := vm.input.Context(pos)
			return prev == '\n'
		}
		return false
	case AssertEndText:
		r, w := vm.input.Step(pos)
		if w == 0 {
			return true
		}
		return inst.Multiline && r == '\n'
	case AssertStringStart:
		return pos == 0
	case AssertStringEnd:
		r, w := vm.input.Step(pos)
		return w == 0 || (r == '\n' && pos+w == vm.input.Len())
	case AssertAbsoluteEnd:
		_, w := vm.input.Step(pos)
		return w == 0
	case AssertWordBoundary:
		return vm.isWordBoundary(pos)
	case AssertNotWordBoundary:
		return !vm.isWordBoundary(pos)
	}
	return true
}

func (vm *VM) isWordBoundary(pos int) bool {
	prevChar, _ := vm.input.Context(pos)
	currChar, w := vm.input.Step(pos)
	if w == 0 {
		currChar = -1
	}
	return isWordChar(prevChar) != isWordChar(currChar)
}

func isWordChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r == '_'
}
