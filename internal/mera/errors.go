package mera

import (
	"errors"
	"fmt"
)

// Kind classifies resolution failures so callers can decide between aborting
// a single lookup and skipping a missing data point.
type Kind int

const (
	// KindUnknownVariable: the base CF name is absent from the table.
	KindUnknownVariable Kind = iota + 1
	// KindUnsupportedUnit: the level suffix carries an unrecognised unit.
	KindUnsupportedUnit
	// KindMalformedName: a file name or variable suffix does not follow the convention.
	KindMalformedName
	// KindMissingFile: a resolved path is absent from the medium being read.
	KindMissingFile
)

func (k Kind) String() string {
	switch k {
	case KindUnknownVariable:
		return "unknown_variable"
	case KindUnsupportedUnit:
		return "unsupported_unit"
	case KindMalformedName:
		return "malformed_name"
	case KindMissingFile:
		return "missing_file"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by this package.
type Error struct {
	Kind   Kind
	Value  string // offending name, unit or path
	Detail string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Value != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Value)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is a sentinel of the same kind, so that
// errors.Is(err, ErrUnknownVariable) matches any unknown-variable error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Value == "" && t.Detail == ""
}

// Sentinels for errors.Is.
var (
	ErrUnknownVariable = &Error{Kind: KindUnknownVariable}
	ErrUnsupportedUnit = &Error{Kind: KindUnsupportedUnit}
	ErrMalformedName   = &Error{Kind: KindMalformedName}
	ErrMissingFile     = &Error{Kind: KindMissingFile}
)

// KindOf returns the Kind carried by err, or 0 if err was not produced here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, value, format string, args ...any) *Error {
	return &Error{Kind: kind, Value: value, Detail: fmt.Sprintf(format, args...)}
}

// MissingFile builds the error reported when a resolved file is not on disk.
func MissingFile(path string) error {
	return &Error{Kind: KindMissingFile, Value: path}
}
