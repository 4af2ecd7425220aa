package trace

import "fmt"

// ParseError reports a trace line that is not a recognized record.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// IOError reports a trace source that cannot be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to read trace: %v", e.Err)
	}

	return fmt.Sprintf("failed to read trace %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
