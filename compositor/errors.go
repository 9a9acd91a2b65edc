package compositor

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput    = errors.New("no images to compose")
	ErrInvalidOption = errors.New("invalid option")
	ErrImageRead     = errors.New("image read failed")
	ErrImageDecode   = errors.New("image decode failed")
	ErrSerialize     = errors.New("document serialization failed")
)

// ImageError reports which input failed. Err wraps both the kind
// (ErrImageRead or ErrImageDecode) and the underlying cause.
type ImageError struct {
	Index int
	URI   string
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %d (%s): %v", e.Index, e.URI, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

func imageError(index int, uri string, kind, cause error) *ImageError {
	return &ImageError{Index: index, URI: uri, Err: fmt.Errorf("%w: %w", kind, cause)}
}
