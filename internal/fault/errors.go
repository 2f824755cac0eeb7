// Package fault defines the error taxonomy shared by the puzzle, submission,
// storage and sync layers.
//
// Every failure that crosses a package boundary is a *Error carrying a Kind.
// Callers branch on the kind with the Is* helpers, which use errors.As and
// therefore see through fmt.Errorf("...: %w") wrapping.
//
// Policy by kind:
//   - VALIDATION, SIGNATURE, REJECTED: terminal for a submission, never retried
//   - NETWORK: transient, retried by the sync queue up to its cap
//   - STORAGE: propagated to the caller of the affected operation and logged
//   - STATE: operation attempted without an active puzzle or session
package fault

import (
	"errors"
	"fmt"
)

// Kind categorizes an Error.
type Kind string

const (
	// KindValidation marks malformed or out-of-range submission fields.
	KindValidation Kind = "VALIDATION"

	// KindSignature marks a submission whose HMAC did not verify.
	KindSignature Kind = "SIGNATURE"

	// KindNetwork marks a transient submit failure.
	KindNetwork Kind = "NETWORK"

	// KindStorage marks a local key/value failure.
	KindStorage Kind = "STORAGE"

	// KindState marks an operation with no active puzzle or session.
	KindState Kind = "STATE"

	// KindRejected marks a 4xx answer from the server collaborator.
	// The server already ran validation, so the client treats it as terminal.
	KindRejected Kind = "REJECTED"
)

// Error is the structured error used across looper.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Op names the operation that failed, e.g. "syncqueue.flush".
	Op string

	// Message is a human-readable reason. For validation and signature
	// errors it is suitable for returning to API clients verbatim.
	Message string

	// Status is the HTTP status associated with the error, when known.
	Status int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a VALIDATION error.
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Status: 400}
}

// Validationf creates a VALIDATION error with a formatted message.
func Validationf(op, format string, args ...any) *Error {
	return Validation(op, fmt.Sprintf(format, args...))
}

// Signature creates a SIGNATURE error.
func Signature(op string) *Error {
	return &Error{
		Kind:    KindSignature,
		Op:      op,
		Message: "invalid signature - score tampering detected",
		Status:  400,
	}
}

// Network wraps a transient submit failure.
func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// Storage wraps a key/value failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// State creates a STATE error.
func State(op, message string) *Error {
	return &Error{Kind: KindState, Op: op, Message: message}
}

// Rejected creates a REJECTED error for a terminal server response.
func Rejected(op string, status int, message string) *Error {
	return &Error{Kind: KindRejected, Op: op, Message: message, Status: status}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// MessageOf returns the Message of the first *Error in err's chain,
// falling back to err.Error().
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsSignature reports whether err is a SIGNATURE error.
func IsSignature(err error) bool { return KindOf(err) == KindSignature }

// IsNetwork reports whether err is a NETWORK error.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsStorage reports whether err is a STORAGE error.
func IsStorage(err error) bool { return KindOf(err) == KindStorage }

// IsState reports whether err is a STATE error.
func IsState(err error) bool { return KindOf(err) == KindState }

// IsRejected reports whether err is a REJECTED error.
func IsRejected(err error) bool { return KindOf(err) == KindRejected }

// IsTerminal reports whether retrying err can never succeed.
func IsTerminal(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindSignature, KindRejected:
		return true
	}
	return false
}
