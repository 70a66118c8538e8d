// Package domainerrors provides coded errors for the directory core.
//
// Every failure that leaves a service is classified into exactly one code
// from the closed set below. Transport layers map codes to HTTP statuses;
// the core never deals in statuses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain failure.
type Code string

const (
	// CodeBusinessKeyExists: create rejected because another record already
	// holds the request's business key (VAT, email).
	CodeBusinessKeyExists Code = "business_key_exists"

	// CodeRecordNotFound: no record with the given identity in the collection.
	CodeRecordNotFound Code = "record_not_found"

	// CodeUnmodifiableProperty: an update intent named a write-protected field.
	CodeUnmodifiableProperty Code = "unmodifiable_property"

	// CodeUniqueProperty: an update intent would duplicate a unique field's
	// value held by a different record.
	CodeUniqueProperty Code = "unique_property"

	// CodeNonExistentProperty: an update intent named a field the record type
	// does not declare.
	CodeNonExistentProperty Code = "non_existent_property"

	// CodePropertyCasting: a supplied value could not be coerced into the
	// field's declared type.
	CodePropertyCasting Code = "property_casting_error"

	// CodeBadRequest: malformed or undecryptable input at the boundary.
	CodeBadRequest Code = "bad_request"

	// CodeUnauthorized: missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeUnknown: any failure the core cannot attribute, including store I/O.
	CodeUnknown Code = "unknown_error"
)

// Error is a coded domain error. Construct via New, Newf or Wrap.
type Error struct {
	code  Code
	msg   string
	cause error
}

func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is / errors.Unwrap chains.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{code: code, msg: msg, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Code() Code { return e.code }

// Message returns the human-readable detail without the cause chain.
func (e *Error) Message() string { return e.msg }

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	return false
}

// Classify maps any error to a code. Total: a nil error has no code and maps
// to the zero Code, an uncoded error maps to CodeUnknown.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeUnknown
}
