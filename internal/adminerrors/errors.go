// Package adminerrors maps wire-level (code, message) failures from the
// admin protocol into typed local errors, and defines the client's own
// transport and timeout failures.
package adminerrors

import (
	"fmt"
	"time"
)

// Code enumerates the classes of failure this client can surface.
type Code int

const (
	// CodeOK marks a response as not carrying an error. Never returned
	// as an error value.
	CodeOK Code = 0

	// CodeProtocol is the fallback for any server error code this
	// client's table does not recognize.
	CodeProtocol Code = 1

	// CodeNotFound means the server reported the requested key, store,
	// or metadata entry does not exist.
	CodeNotFound Code = 2

	// CodeInvalidRequest means the server rejected the request shape
	// (e.g. unknown store name, malformed filter).
	CodeInvalidRequest Code = 3

	// CodeUnavailable means the server is present but cannot currently
	// service the request (e.g. rebalancing, overloaded).
	CodeUnavailable Code = 4

	// CodeTransport covers connect/read/write/timeout failures. The
	// socket backing the failed operation has already been closed by
	// the time this error is returned.
	CodeTransport Code = 5

	// CodeEncoding covers failures that occur before any byte reaches
	// the network, such as a filter that cannot be serialized.
	CodeEncoding Code = 6

	// CodeTimeout marks a waitForCompletion deadline. See TimeoutError.
	CodeTimeout Code = 7
)

// Error is the typed failure surfaced to callers for protocol-level,
// transport-level, and encoding-level problems.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an *Error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Transport wraps an I/O failure. Callers must have already closed the
// socket before constructing this.
func Transport(cause error) *Error {
	return Wrap(CodeTransport, "admin client transport failure", cause)
}

// Encoding wraps a failure that happened before any network I/O, such as
// an unencodable filter.
func Encoding(cause error) *Error {
	return Wrap(CodeEncoding, "admin client encoding failure", cause)
}

// IsNotFound reports whether err is an *Error with Code == CodeNotFound.
func IsNotFound(err error) bool {
	return codeOf(err) == CodeNotFound
}

// IsTransport reports whether err is an *Error with Code == CodeTransport.
func IsTransport(err error) bool {
	return codeOf(err) == CodeTransport
}

func codeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeOK
}

// CodeTable maps the server's wire error codes (VProto.Error.errorCode) to
// local Codes. It is a table, not a switch, so callers can extend or swap
// it (e.g. a server fork with additional codes) without touching this
// package.
type CodeTable map[uint32]Code

// DefaultCodeTable is the code table for the shipped server error codes.
// Any code absent from the table maps to CodeProtocol.
var DefaultCodeTable = CodeTable{
	1: CodeNotFound,
	2: CodeInvalidRequest,
	3: CodeUnavailable,
}

// Map translates a wire-level (code, message) pair into a typed *Error
// using t, falling back to CodeProtocol for unrecognized codes.
func (t CodeTable) Map(wireCode uint32, message string) *Error {
	code, ok := t[wireCode]
	if !ok {
		code = CodeProtocol
	}
	return New(code, message)
}

// TimeoutError is raised by waitForCompletion when maxWait elapses before
// the operation completes.
type TimeoutError struct {
	RequestID int64
	MaxWait   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("admin client: request %d did not finish within %s", e.RequestID, e.MaxWait)
}

// ErrCode always reports CodeTimeout for a *TimeoutError, so callers that
// only check Code still see a consistent value.
func (e *TimeoutError) ErrCode() Code { return CodeTimeout }
