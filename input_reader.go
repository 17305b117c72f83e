package boundre

import (
	"bytes"
	"io"
	"unicode/utf8"
)

// ReaderInput implements Input for an io.Reader.
// The whole stream is read into memory up front since backtracking revisits it.
type ReaderInput struct {
	data []byte
}

func NewReaderInput(r io.Reader) (*ReaderInput, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &ReaderInput{data: b}, nil
}

func (s *ReaderInput) Step(pos int) (rune, int) {
	if pos >= len(s.data) {
		return 0, 0
	}
	return utf8.DecodeRune(s.data[pos:])
}

func (s *ReaderInput) Context(pos int) (rune, int) {
	if pos <= 0 {
		return -1, 0
	}
	if pos > len(s.data) {
		pos = len(s.data)
	}
	return utf8.DecodeLastRune(s.data[:pos])
}

func (s *ReaderInput) Len() int {
	return len(s.data)
}

func (s *ReaderInput) Index(re *Regexp, pos int) int {
	if re.prog.Prefix == "" || pos > len(s.data) {
		return -1
	}
	idx := bytes.Index(s.data[pos:], []byte(re.prog.Prefix))
	if idx == -1 {
		return -1
	}
	return pos + idx
}

func (s *ReaderInput) Slice(start, end int) Input {
	return &ReaderInput{data: s.data[start:end]}
}

func (s *ReaderInput) String() string {
	return string(s.data)
}
