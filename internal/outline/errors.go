package outline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedHeading is matched by every MalformedHeadingError.
var ErrMalformedHeading = errors.New("malformed heading")

// MalformedHeadingError reports a block that does not start with a marker run
// followed by whitespace.
type MalformedHeadingError struct {
	Offset int    // Byte offset of the block in the parsed text, -1 if unknown
	Line   string // First line of the offending block
}

func (e *MalformedHeadingError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("malformed heading %q", e.Line)
	}
	return fmt.Sprintf("malformed heading at offset %d: %q", e.Offset, e.Line)
}

func (e *MalformedHeadingError) Is(target error) bool {
	return target == ErrMalformedHeading
}

func malformed(offset int, block string) error {
	line := block
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return &MalformedHeadingError{Offset: offset, Line: line}
}
