package crashfilter

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrAlreadyProcessed is returned by Pipeline.Run when the roadway artifact
// for the requested key is already on disk. It is not a failure.
var ErrAlreadyProcessed = errors.New("already processed")

// SourceReadError is a source file (or directory) that could not be read
// as csv. It aborts the merge.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// MissingColumnError is a required column absent from a table.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found, available columns: %s",
		e.Column, strings.Join(e.Available, ","))
}
