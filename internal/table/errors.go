package table

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies file-level failures.
type ErrorKind string

const (
	KindFileNotFound    ErrorKind = "file_not_found"
	KindParse           ErrorKind = "parse"
	KindEncoding        ErrorKind = "encoding"
	KindWritePermission ErrorKind = "write_permission"
	KindUnknown         ErrorKind = "unknown"
)

// Sentinels matched by errors.Is against a *FileError of the same kind.
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrParse           = errors.New("unable to parse delimited file")
	ErrEncoding        = errors.New("encoding error")
	ErrWritePermission = errors.New("no permission to write")
	ErrUnknown         = errors.New("unknown file error")
)

// FileError wraps a load or save failure with the offending path.
type FileError struct {
	Op   string
	Kind ErrorKind
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes errors.Is(err, ErrParse) and friends work.
func (e *FileError) Is(target error) bool {
	return e != nil && target == e.sentinel()
}

func (e *FileError) sentinel() error {
	switch e.Kind {
	case KindFileNotFound:
		return ErrFileNotFound
	case KindParse:
		return ErrParse
	case KindEncoding:
		return ErrEncoding
	case KindWritePermission:
		return ErrWritePermission
	default:
		return ErrUnknown
	}
}

// IsKind reports whether err carries a *FileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// classifyFS maps filesystem errors onto the taxonomy. Permission problems
// only get their own kind on the write path.
func classifyFS(op, path string, err error, writing bool) *FileError {
	kind := KindUnknown
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindFileNotFound
	case writing && errors.Is(err, fs.ErrPermission):
		kind = KindWritePermission
	}
	return &FileError{Op: op, Kind: kind, Path: path, Err: err}
}
