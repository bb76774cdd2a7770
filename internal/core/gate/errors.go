package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

var (
	// ErrTransientUnavailable marks a probe failure caused by the store not
	// being reachable yet. The gate retries these.
	ErrTransientUnavailable = errors.New("data store temporarily unavailable")

	// ErrMisconfigured marks a probe failure that retrying cannot fix
	// (bad DSN, rejected credentials, invalid address).
	ErrMisconfigured = errors.New("data store misconfigured")

	// ErrBudgetExhausted is returned once max_attempts consecutive probes failed.
	ErrBudgetExhausted = errors.New("data store unreachable after exhausting retry budget")
)

// Kind is the classification of a probe error.
type Kind int

const (
	KindTransient Kind = iota
	KindMisconfigured
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindMisconfigured:
		return "misconfigured"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// classifiedError tags a probe error with its kind while keeping the cause
// reachable through errors.Is / errors.As.
type classifiedError struct {
	kind Kind
	err  error
}

func (e *classifiedError) Error() string { return e.err.Error() }

func (e *classifiedError) Unwrap() error { return e.err }

func (e *classifiedError) Is(target error) bool {
	switch e.kind {
	case KindMisconfigured:
		return target == ErrMisconfigured
	default:
		return target == ErrTransientUnavailable
	}
}

// Transient tags err as a retryable connectivity failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{kind: KindTransient, err: err}
}

// Misconfigured tags err as a non-retryable configuration failure.
func Misconfigured(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{kind: KindMisconfigured, err: err}
}

// ExhaustedError is returned when the retry budget runs out.
type ExhaustedError struct {
	Target   string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s: %s (%d attempts)", e.Target, ErrBudgetExhausted, e.Attempts)
	}
	return fmt.Sprintf("%s: %s (%d attempts): %v", e.Target, ErrBudgetExhausted, e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrBudgetExhausted }

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Classifier decides whether a probe error is worth retrying.
type Classifier interface {
	Classify(err error) Kind
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(err error) Kind

func (f ClassifierFunc) Classify(err error) Kind { return f(err) }

// DefaultClassifier honours tags applied with Transient / Misconfigured.
// Untagged errors are transient only when IsConnectivityError recognises
// them; anything else is a misconfiguration and is not retried.
var DefaultClassifier = ClassifierFunc(func(err error) Kind {
	switch {
	case errors.Is(err, ErrMisconfigured):
		return KindMisconfigured
	case errors.Is(err, ErrTransientUnavailable), IsConnectivityError(err):
		return KindTransient
	default:
		return KindMisconfigured
	}
})

// IsConnectivityError reports whether err is a network-level failure:
// dial and socket errors, timeouts, or a connection closed mid-handshake.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
