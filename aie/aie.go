// Package aie provides a mechanism to create or wrap errors with a kind
// drawn from the airindex error taxonomy so that callers can tell a bad
// configuration from a failed build, a storage failure, or a corrupt index.
package aie

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
)

// A Kind represents a class of error.  Command-line and API layers
// convert these into their own representation, e.g., an exit status.
type Kind int

const (
	Other Kind = iota
	// Config errors are detected before a build starts.
	Config
	// Build errors abort a build before its root is published.
	Build
	// Storage errors come from the block/segment backend and are
	// passed through without retry.
	Storage
	// Corrupt errors invalidate an index handle.
	Corrupt
	// NotFound means a storage object does not exist.  A key missing
	// from an index is not an error.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Config:
		return "invalid configuration"
	case Build:
		return "index build failed"
	case Storage:
		return "storage error"
	case Corrupt:
		return "index corrupt"
	case NotFound:
		return "item does not exist"
	}
	return "unknown error kind"
}

type Error struct {
	Kind Kind
	Err  error
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}

func (e *Error) Error() string {
	b := &bytes.Buffer{}
	if e.Kind != Other {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns just the Err.Error() string, if present, or the Kind
// string description.
func (e *Error) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != Other {
		return e.Kind.String()
	}
	return "no error"
}

// E generates an error from any mix of:
//   - a Kind
//   - an existing error
//   - a string and optional formatting verbs, like fmt.Errorf (including support
//     for the `%w` verb).
//
// The string & format verbs must be last in the arguments, if present.
// If the wrapped error already carries a kind and no kind is given,
// the wrapped kind is kept.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("no args to aie.E")
	}
	e := &Error{}
	for i, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case error:
			e.Err = arg
		case string:
			e.Err = fmt.Errorf(arg, args[i+1:]...)
			return e
		default:
			_, file, line, _ := runtime.Caller(1)
			return fmt.Errorf("unknown type %T value %v in aie.E call at %v:%v", arg, arg, file, line)
		}
	}
	if e.Kind == Other && e.Err != nil {
		e.Kind = KindOf(e.Err)
	}
	return e
}

// KindOf returns the kind of the outermost *Error in err's chain or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// IsKind reports whether any *Error in err's chain has kind k.
func IsKind(err error, k Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == k {
			return true
		}
		err = e.Err
	}
	return false
}

// Storagef wraps a backend error as a Storage error unless it is already
// classified.
func Storagef(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != Other {
		return err
	}
	return &Error{Kind: Storage, Err: fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)}
}
