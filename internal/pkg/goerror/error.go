// Package goerror carries the error vocabulary shared by usecases and the
// HTTP layer: a user-facing message, a coarse Type and a Code that decides
// the response status.
package goerror

import (
	"errors"
	"log/slog"
	"net/http"
)

var (
	// ErrNotFound is returned by repositories when no row or key matches.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by repositories on a uniqueness clash.
	ErrConflict = errors.New("resource conflict")
)

// Type groups errors by who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "server"
	case TypeBusiness:
		return "business"
	case TypeValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Code selects the HTTP status of an error.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
	CodeUnavailable
)

var codeTable = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:       {"internal", http.StatusInternalServerError},
	CodeInvalidFormat:  {"invalid_format", http.StatusBadRequest},
	CodeInvalidInput:   {"invalid_input", http.StatusUnprocessableEntity},
	CodeNotFound:       {"not_found", http.StatusNotFound},
	CodeConflict:       {"conflict", http.StatusConflict},
	CodeTooManyRequest: {"too_many_requests", http.StatusTooManyRequests},
	CodeUnauthorized:   {"unauthorized", http.StatusUnauthorized},
	CodeForbidden:      {"forbidden", http.StatusForbidden},
	CodeUnavailable:    {"unavailable", http.StatusServiceUnavailable},
}

func (c Code) String() string {
	if info, ok := codeTable[c]; ok {
		return info.name
	}
	return codeTable[CodeInternal].name
}

// Status returns the HTTP status for c; unknown codes map to 500.
func (c Code) Status() int {
	if info, ok := codeTable[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is the structured error rendered by the router's error codec.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error returns the cause when present so logs keep the real failure; the
// user-facing text is Msg.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.errType.String() + " error"
	}
}

// Msg is the message shown to clients.
func (e *Error) Msg() string { return e.msg }

func (e *Error) Type() Type { return e.errType }

func (e *Error) Code() Code { return e.code }

// Fields holds per-field messages of a validation error.
func (e *Error) Fields() map[string]string { return e.fields }

func (e *Error) Unwrap() error { return e.err }

// StatusCode is the HTTP status the error is rendered with.
func (e *Error) StatusCode() int { return e.code.Status() }

// LogValue groups the error attributes when the error is passed to slog.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.errType.String()),
		slog.String("code", e.code.String()),
		slog.String("message", e.msg),
	}
	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// CodeOf returns the code carried by err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.code
	}
	return CodeInternal
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewUnavailable reports an unreachable dependency; clients may retry.
func NewUnavailable(err error, msg string) error {
	return &Error{err: err, msg: msg, errType: TypeServer, code: CodeUnavailable}
}

// NewBusiness reports a rule the request did not satisfy.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput wraps a validator error, or builds one from field/message
// pairs when err is nil. An odd number of pairs is a programming mistake and
// degrades to an invalid format error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat reports a body that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
