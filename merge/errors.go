package merge

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when Merge is called with an empty input list,
// before any file is touched.
var ErrNoFiles = errors.New("no input files given")

// ErrNoPages means every input loaded but the combined page list came
// out empty. Loading rejects empty documents per file, so reaching this
// indicates an inconsistency upstream.
var ErrNoPages = errors.New("no pages collected from input files")

// LoadError wraps a failure to open or parse one input file.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.File, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// ProtectedError marks an input that declares encryption in its trailer.
type ProtectedError struct {
	File string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%s: document is password protected", e.File)
}

// EmptyError marks an input whose page tree contains no pages.
type EmptyError struct {
	File string
}

func (e *EmptyError) Error() string { return fmt.Sprintf("%s: document has no pages", e.File) }

// WriteError wraps a failure to serialize or persist the merged output.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write output: %v", e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }
