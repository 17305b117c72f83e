package boundre

// DefaultRatio is the number of bytes a metered match may read per byte of
// input.
const DefaultRatio = 1000

// BudgetedInput wraps an Input and counts the bytes of every character the
// engine reads through Step or Context, so an ASCII character costs one and
// a multi-byte one costs its width. Reads past either end of the text see
// nothing and are free, like asking for the length. Once the count passes
// Len()*ratio the input fails: reads return end-of-input and Err reports a
// *BudgetError, which makes the VM abandon the run.
//
// One BudgetedInput is meant to be reused across attempts via Reset.
// It is not safe for concurrent use.
type BudgetedInput struct {
	inner       Input
	ratio       int
	accesses    int
	maxAccesses int
	err         error
}

// NewBudgetedInput meters inner with the given ratio; ratio <= 0 means DefaultRatio.
func NewBudgetedInput(inner Input, ratio int) *BudgetedInput {
	if ratio <= 0 {
		ratio = DefaultRatio
	}
	b := &BudgetedInput{ratio: ratio}
	return b.Reset(inner)
}

// Reset points b at a new input, zeroes the access count and recomputes the ceiling.
func (b *BudgetedInput) Reset(inner Input) *BudgetedInput {
	b.inner = inner
	b.accesses = 0
	b.maxAccesses = inner.Len() * b.ratio
	b.err = nil
	return b
}

// charge records n bytes read and reports whether they fit in the budget.
func (b *BudgetedInput) charge(n int) bool {
	if b.err != nil {
		return false
	}
	b.accesses += n
	if b.accesses > b.maxAccesses {
		b.err = &BudgetError{InputLen: b.inner.Len(), Threshold: b.maxAccesses}
		return false
	}
	return true
}

func (b *BudgetedInput) Step(pos int) (rune, int) {
	if pos >= b.inner.Len() {
		return 0, 0
	}
	r, w := b.inner.Step(pos)
	if !b.charge(w) {
		return 0, 0
	}
	return r, w
}

func (b *BudgetedInput) Context(pos int) (rune, int) {
	if pos <= 0 {
		return -1, 0
	}
	r, w := b.inner.Context(pos)
	if !b.charge(w) {
		return -1, 0
	}
	return r, w
}

// Index delegates to the inner input and charges every byte the scan passed over.
func (b *BudgetedInput) Index(re *Regexp, pos int) int {
	if b.err != nil {
		return -1
	}
	idx := b.inner.Index(re, pos)
	scanned := max(b.inner.Len()-pos, 0)
	if idx >= 0 {
		scanned = idx - pos + len(re.prog.Prefix)
	}
	if !b.charge(scanned) {
		return -1
	}
	return idx
}

// Len does not consume budget.
func (b *BudgetedInput) Len() int { return b.inner.Len() }

// Slice returns a new BudgetedInput over the sub-range with a fresh budget.
// The slice does not draw from b's remaining budget.
func (b *BudgetedInput) Slice(start, end int) Input {
	return NewBudgetedInput(b.inner.Slice(start, end), b.ratio)
}

func (b *BudgetedInput) String() string { return b.inner.String() }

// Err returns the *BudgetError once the budget has been exceeded.
func (b *BudgetedInput) Err() error { return b.err }

// Accesses returns the number of bytes charged since the last Reset.
func (b *BudgetedInput) Accesses() int { return b.accesses }

// MaxAccesses returns the ceiling for the current input.
func (b *BudgetedInput) MaxAccesses() int { return b.maxAccesses }

// Ratio returns the bytes of reads allowed per byte of input.
func (b *BudgetedInput) Ratio() int { return b.ratio }
