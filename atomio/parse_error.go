package atomio

import (
	"fmt"
	"strings"
)

// ParseError reports a structural violation at a file offset. Errors wrap
// the one encountered below them so the chain reads as a path.
type ParseError struct {
	Debug  string
	Offset int64
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "atomio: parse error: " + strings.Join(s, ",")
}

func parseErr(debug string, offset int64, prev error) error {
	ppe, _ := prev.(*ParseError)
	if prev != nil && ppe == nil {
		return prev
	}
	return &ParseError{Debug: debug, Offset: offset, prev: ppe}
}

// ParseErr wraps an error with positional context, for use by packages
// building on the cursor.
func ParseErr(debug string, offset int64, prev error) error {
	return parseErr(debug, offset, prev)
}
