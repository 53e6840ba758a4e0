package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file's extension is not one
	// of the supported document formats.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDirectoryNotFound is returned when the directory given to
	// ExtractDirectory does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")
)
