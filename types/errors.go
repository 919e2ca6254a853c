package types

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below
var (
	ErrIO              = errors.New("i/o error")
	ErrMultipleBlocks  = errors.New("multiple metadata blocks")
	ErrDecode          = errors.New("tag decode error")
	ErrInvalidArgument = errors.New("invalid argument")
)

// IOError reports a file or directory that could not be opened or read
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// MultipleBlocksError reports a file holding more than one metadata block.
// Path is empty when the error comes straight from a byte buffer.
type MultipleBlocksError struct {
	Path  string
	Count int
}

func (e *MultipleBlocksError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("found %d metadata blocks, expected at most one", e.Count)
	}
	return fmt.Sprintf("%s: found %d metadata blocks, expected at most one", e.Path, e.Count)
}

func (e *MultipleBlocksError) Is(target error) bool { return target == ErrMultipleBlocks }

// DecodeError reports a tag whose bytes are not valid UTF-8
type DecodeError struct {
	Path  string
	Index int
	Raw   []byte
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tag %d is not valid UTF-8: %q", e.Index, e.Raw)
	}
	return fmt.Sprintf("%s: tag %d is not valid UTF-8: %q", e.Path, e.Index, e.Raw)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// InvalidArgumentError reports an argument value outside its allowed set
type InvalidArgumentError struct {
	Name  string
	Value string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Name, e.Value)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
