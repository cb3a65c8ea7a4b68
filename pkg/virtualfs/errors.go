package virtualfs

import "errors"

var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrNotAFile      = errors.New("not a file")
	ErrNotADirectory = errors.New("not a directory")
	ErrAlreadyExists = errors.New("file exists")
	ErrIsADirectory  = errors.New("is a directory")
	ErrRoot          = errors.New("operation not permitted on the root directory")
)

// PathError records the operation and path that failed. Err is one of the
// sentinel errors above, so callers match with errors.Is.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }
