package apperrors

import (
	"errors"
	"fmt"
)

// Code buckets a failure so handlers can map it to a response without
// string-matching messages.
type Code string

const (
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodeStore        Code = "store"
	CodePartialBatch Code = "partial_batch"
)

// Error is the single error type the service raises on its own behalf.
// Store errors wrap the underlying driver error for logging; the wrapped
// cause is never serialized to clients.
type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Code() Code { return e.code }

// Message returns the client-safe message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

func Validation(msg string) *Error {
	return &Error{code: CodeValidation, msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{code: CodeNotFound, msg: msg}
}

func Store(msg string, err error) *Error {
	return &Error{code: CodeStore, msg: msg, err: err}
}

// CodeOf extracts the code from err, or CodeStore for anything foreign.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeStore
}

func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }
