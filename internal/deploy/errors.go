package deploy

import (
	"errors"
	"fmt"
)

// Kind classifies a run-level failure.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindCredential
	KindDeploy
	KindInternal
	KindReporting
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindCredential:
		return "credential"
	case KindDeploy:
		return "deploy"
	case KindInternal:
		return "internal"
	case KindReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrCredential    = errors.New("credential error")
	ErrDeploy        = errors.New("deploy error")
	ErrInternal      = errors.New("internal error")
	ErrReporting     = errors.New("reporting error")
)

// Error wraps a failure with its kind and the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string // Operation that failed, e.g. "select contexts"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return sentinel(e.Kind) == target
}

func sentinel(k Kind) error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindCredential:
		return ErrCredential
	case KindDeploy:
		return ErrDeploy
	case KindInternal:
		return ErrInternal
	case KindReporting:
		return ErrReporting
	default:
		return nil
	}
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around err.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
