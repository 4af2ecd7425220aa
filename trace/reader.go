package trace

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Reader reads trace records one line at a time.
type Reader struct {
	src  *bufio.Reader
	path string
	line int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r)}
}

// newFileReader returns a Reader whose I/O errors name path.
func newFileReader(r io.Reader, path string) *Reader {
	tr := NewReader(r)
	tr.path = path

	return tr
}

// Next returns the next record. It returns io.EOF once the trace is
// exhausted, a *ParseError for a line that is not a valid record, and an
// *IOError if the source fails. Reading may continue after a *ParseError.
func (r *Reader) Next() (Record, error) {
	text, err := r.src.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Record{}, &IOError{Path: r.path, Err: err}
	}

	if text == "" && errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}

	r.line++

	return ParseLine(r.line, text)
}

// ParseLine parses one trace line. lineNum is only used for reporting.
func ParseLine(lineNum int, text string) (Record, error) {
	text = strings.TrimRight(text, "\r\n")
	fail := func(reason string) (Record, error) {
		return Record{}, &ParseError{Line: lineNum, Text: text, Reason: reason}
	}

	if text == "" {
		return fail("empty line")
	}

	if text[0] == 'I' {
		return Record{Line: lineNum, Op: OpInstruction}, nil
	}

	if len(text) < 3 {
		return fail("line too short")
	}

	op := opFromByte(text[1])
	if op != OpLoad && op != OpStore && op != OpModify {
		return fail("unknown operation")
	}

	addrText, sizeText, found := strings.Cut(text[3:], ",")
	if !found {
		return fail("missing size")
	}

	addrText = strings.TrimSpace(addrText)
	addrText = strings.TrimPrefix(strings.TrimPrefix(addrText, "0x"), "0X")
	addr, err := strconv.ParseUint(addrText, 16, 64)
	if err != nil {
		return fail("bad address")
	}

	size, err := strconv.ParseUint(strings.TrimSpace(sizeText), 10, 32)
	if err != nil {
		return fail("bad size")
	}

	return Record{
		Line:    lineNum,
		Op:      op,
		Address: addr,
		Size:    uint32(size),
	}, nil
}
