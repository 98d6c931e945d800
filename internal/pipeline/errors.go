package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoFacts means the document parsed but yielded zero non-nil facts.
// Callers show a different message for this than for a parse failure: the
// file is structurally valid XBRL, it just reports nothing usable.
var ErrNoFacts = errors.New("document contains no usable facts")

// ParseError means the input could not be loaded as an XBRL document at
// all. Fatal to the ingestion; no partial result accompanies it.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
