package merger

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when a merge or preview is requested without input.
var ErrNoFiles = errors.New("no files to merge")

// InvalidFileError reports an input that does not look like an NC program.
type InvalidFileError struct {
	Filename string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("%s does not appear to be a valid NC file", e.Filename)
}

// IsInputError reports whether err was caused by the caller's input rather
// than by the merger itself.
func IsInputError(err error) bool {
	var invalid *InvalidFileError
	return errors.Is(err, ErrNoFiles) || errors.As(err, &invalid)
}
