// Package errs defines the typed error taxonomy used across GICS's
// encode/decode pipeline. Every error surfaced across a package boundary
// is wrapped in a *Error carrying one of the fixed Kind values so callers
// can branch with errors.Is/errors.As without depending on package-local
// sentinels.
package errs

import "errors"

// Kind classifies an Error per spec §7.
type Kind uint8

const (
	_ Kind = iota
	KindFormat
	KindIncompleteData
	KindIntegrity
	KindLimitExceeded
	KindUsage
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "FormatError"
	case KindIncompleteData:
		return "IncompleteData"
	case KindIntegrity:
		return "IntegrityError"
	case KindLimitExceeded:
		return "LimitExceededError"
	case KindUsage:
		return "UsageError"
	default:
		return "UnknownError"
	}
}

// Error is the wrapper type every public GICS function returns. Kind lets
// callers classify the failure; the wrapped error carries detail.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Kind.String() + " (" + e.Op + "): " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind, so callers can write
// errors.Is(err, errs.ErrIncompleteData) against a *Error value.
func (e *Error) Is(target error) bool {
	var k *Error
	if errors.As(target, &k) {
		return e.Kind == k.Kind
	}
	return false
}

// New wraps err with kind and op.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Sentinel root errors, one per Kind, usable with errors.Is against any
// *Error of the matching Kind via the Is method above.
var (
	ErrFormat         = &Error{Kind: KindFormat, Err: errors.New("format error")}
	ErrIncompleteData = &Error{Kind: KindIncompleteData, Err: errors.New("incomplete data")}
	ErrIntegrity      = &Error{Kind: KindIntegrity, Err: errors.New("integrity error")}
	ErrLimitExceeded  = &Error{Kind: KindLimitExceeded, Err: errors.New("limit exceeded")}
	ErrUsage          = &Error{Kind: KindUsage, Err: errors.New("usage error")}
)

// Format wraps err as a FormatError, e.g. bad magic, unknown codec id.
func Format(op string, err error) *Error { return New(KindFormat, op, err) }

// Incomplete wraps err as an IncompleteData error, e.g. a short read or a
// truncated varint.
func Incomplete(op string, err error) *Error { return New(KindIncompleteData, op, err) }

// Integrity wraps err as an IntegrityError, e.g. a hash/CRC/AEAD mismatch.
func Integrity(op string, err error) *Error { return New(KindIntegrity, op, err) }

// LimitExceeded wraps err as a LimitExceededError, e.g. an outer-decompress
// size cap overrun.
func LimitExceeded(op string, err error) *Error { return New(KindLimitExceeded, op, err) }

// Usage wraps err as a UsageError, e.g. AddSnapshot called after Finish.
func Usage(op string, err error) *Error { return New(KindUsage, op, err) }
