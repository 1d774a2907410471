package kmlgen

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEmptyGeometry       = errors.New("empty geometry")
	ErrUnsupportedRenderer = errors.New("unsupported layer renderer")
)

// TempFileError reports an output file that could not be created or
// written. No partial file is left behind.
type TempFileError struct {
	Path string
	Err  error
}

func (e *TempFileError) Error() string {
	return fmt.Sprintf("kmlgen: output file %s: %v", e.Path, e.Err)
}

func (e *TempFileError) Unwrap() error {
	return e.Err
}

// FeatureError ties a conversion failure to the feature that caused it.
type FeatureError struct {
	ID  int64
	Err error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature %d: %v", e.ID, e.Err)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}
