package boundre

// Find returns a slice holding the text of the leftmost match in b of the regular expression.
// A return value of nil indicates no match.
func (re *Regexp) Find(b []byte) []byte {
	match := re.FindIndex(b)
	if match == nil {
		return nil
	}
	return b[match[0]:match[1]:match[1]]
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost match in b of the regular expression. A return value of nil
// indicates no match.
func (re *Regexp) FindIndex(b []byte) []int {
	return re.FindStringIndex(string(b))
}

// FindSubmatch returns a slice of slices holding the text of the leftmost match
// of the regular expression in b and the matches, if any, of its subexpressions.
// A return value of nil indicates no match.
func (re *Regexp) FindSubmatch(b []byte) [][]byte {
	input := NewStringInput(string(b))
	caps, err := re.search(re.newVM(input, 0), input, 0)
	if err != nil || caps == nil {
		return nil
	}
	return submatchBytes(b, caps)
}

// FindAll returns a slice of all successive matches of the expression.
// A return value of nil indicates no match. n < 0 means return all matches.
func (re *Regexp) FindAll(b []byte, n int) [][]byte {
	var result [][]byte
	for _, match := range re.FindAllIndex(b, n) {
		result = append(result, b[match[0]:match[1]:match[1]])
	}
	return result
}

// FindAllIndex returns a slice of all successive matches of the expression,
// as two-element slices of integers. n < 0 means return all matches.
func (re *Regexp) FindAllIndex(b []byte, n int) [][]int {
	return re.FindAllStringIndex(string(b), n)
}

// FindAllSubmatch returns a slice of all successive matches of the expression,
// as defined by FindSubmatch. n < 0 means return all matches.
func (re *Regexp) FindAllSubmatch(b []byte, n int) [][][]byte {
	var result [][][]byte
	_ = re.each(NewStringInput(string(b)), n, 0, func(caps []int) bool {
		result = append(result, submatchBytes(b, caps))
		return true
	})
	return result
}

// Match reports whether the byte slice b contains any match of the regular expression re.
func (re *Regexp) Match(b []byte) bool {
	return re.MatchString(string(b))
}

// submatchBytes slices b by caps; unmatched groups stay nil.
func submatchBytes(b []byte, caps []int) [][]byte {
	result := make([][]byte, len(caps)/2)
	for i := range result {
		if start, end := caps[2*i], caps[2*i+1]; start >= 0 && end >= start {
			result[i] = b[start:end:end]
		}
	}
	return result
}
