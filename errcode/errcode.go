package errcode

import "errors"

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK         Code = "ok"
	BadRequest Code = "bad_request"

	// Request decoding and payload composition.
	UnknownToken Code = "unknown_token"
	Truncated    Code = "truncated"
	Overflow     Code = "overflow"

	// Dispatch.
	NotFound          Code = "not_found"
	MethodNotAllowed  Code = "method_not_allowed"
	DuplicateResource Code = "duplicate_resource"

	// Peripherals and configuration.
	InvalidParams   Code = "invalid_params"
	UnknownBus      Code = "unknown_bus"
	UnknownPin      Code = "unknown_pin"
	UnknownPlatform Code = "unknown_platform"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.X) match a wrapped *E carrying X.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap attaches an operation name and cause to a code.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	switch x := err.(type) {
	case Code:
		return x
	case coder:
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}
