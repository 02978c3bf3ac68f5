package utils

import "fmt"

// DecodeError reports a source image that is missing, unreadable or in an
// unsupported codec.
type DecodeError struct {
	Op   string
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError reports a font, asset or sink that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
