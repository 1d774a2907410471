package wkt

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConversion matches every error raised while reading WKT.
	ErrConversion = errors.New("unable to convert wkt to kml")
	// ErrUnrecognizedGeometry matches a WKT text whose keyword is not supported.
	ErrUnrecognizedGeometry = errors.New("unrecognized wkt geometry")
)

type UnrecognizedGeometryError struct {
	Prefix string
}

func (e *UnrecognizedGeometryError) Error() string {
	if e.Prefix == "" {
		return "wkt: empty geometry text"
	}
	return fmt.Sprintf("wkt: unrecognized geometry type %q", e.Prefix)
}

func (e *UnrecognizedGeometryError) Is(target error) bool {
	return target == ErrConversion || target == ErrUnrecognizedGeometry
}

// SyntaxError reports malformed WKT; Offset is the byte position in the input.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("wkt: %s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrConversion
}
