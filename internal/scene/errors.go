package scene

import (
	"errors"
	"fmt"

	"tent/pkg/scenefile"
)

var (
	ErrUnknownKind    = errors.New("unknown geometry kind")
	ErrUnknownShader  = errors.New("unknown shader")
	ErrAlreadyOwned   = errors.New("drawable already owned by a manager")
	ErrNilDrawable    = errors.New("nil drawable")
	ErrBounds         = errors.New("index out of range")
	ErrBufferOverrun  = errors.New("light buffer overrun")
	ErrMalformedScene = scenefile.ErrMalformed
	ErrMissingField   = scenefile.ErrMissingField
	ErrInvalidField   = scenefile.ErrInvalidField
)

// ConfigError reports a request that names an unknown kind or shader. The
// operation that hit it is a no-op.
type ConfigError struct {
	Op   string
	Name string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IOError reports a scene file that could not be opened, read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports a malformed scene document, read from disk or
// encoded for saving. Record is -1 when the problem is in the document
// structure rather than in a single record.
type ParseError struct {
	Path   string
	Record int
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Record < 0:
		return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
	case e.Field == "":
		return fmt.Sprintf("parse %s: record %d: %v", e.Path, e.Record, e.Err)
	default:
		return fmt.Sprintf("parse %s: record %d: field %q: %v", e.Path, e.Record, e.Field, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// BufferOverrunError reports more lights than the light buffer can hold.
type BufferOverrunError struct {
	Lights   int
	Capacity int
}

func (e *BufferOverrunError) Error() string {
	return fmt.Sprintf("%v: %d lights, capacity %d", ErrBufferOverrun, e.Lights, e.Capacity)
}

func (e *BufferOverrunError) Unwrap() error { return ErrBufferOverrun }

// BoundsError reports an index outside the collection.
type BoundsError struct {
	Index int
	Len   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: index %d, length %d", ErrBounds, e.Index, e.Len)
}

func (e *BoundsError) Unwrap() error { return ErrBounds }
