package sim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies kernel errors.
type ErrorKind string

const (
	// Build-time graph errors.
	KindUnknownModel          ErrorKind = "unknown-model"
	KindUnknownPort           ErrorKind = "unknown-port"
	KindPortTypeMismatch      ErrorKind = "port-type-mismatch"
	KindDuplicateModel        ErrorKind = "duplicate-model"
	KindDuplicatePort         ErrorKind = "duplicate-port"
	KindInputAlreadyConnected ErrorKind = "input-already-connected"
	KindInvalidModel          ErrorKind = "invalid-model"
	KindGraphSealed           ErrorKind = "graph-sealed"
	KindInvalidConfig         ErrorKind = "invalid-config"

	// Runtime errors.
	KindInvalidSchedule ErrorKind = "invalid-schedule"
	KindCascadeLimit    ErrorKind = "cascade-limit-exceeded"
	KindHandler         ErrorKind = "handler"
	KindContextExpired  ErrorKind = "context-expired"
	KindSimulationEnded ErrorKind = "simulation-ended"
)

// Error is the error type returned by every kernel operation.
// Use errors.Is with the exported sentinels to test the kind, and errors.As
// to reach the model, port and time the failure is attributed to.
type Error struct {
	Kind   ErrorKind
	Model  ModelID // empty when not attributable to a model
	Port   string  // empty when not attributable to a port
	Time   Time    // clock value at the failure (runtime errors only)
	Detail string
	Err    error // model-supplied cause for KindHandler
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnknownModel          = &Error{Kind: KindUnknownModel}
	ErrUnknownPort           = &Error{Kind: KindUnknownPort}
	ErrPortTypeMismatch      = &Error{Kind: KindPortTypeMismatch}
	ErrDuplicateModel        = &Error{Kind: KindDuplicateModel}
	ErrDuplicatePort         = &Error{Kind: KindDuplicatePort}
	ErrInputAlreadyConnected = &Error{Kind: KindInputAlreadyConnected}
	ErrInvalidModel          = &Error{Kind: KindInvalidModel}
	ErrGraphSealed           = &Error{Kind: KindGraphSealed}
	ErrInvalidConfig         = &Error{Kind: KindInvalidConfig}
	ErrInvalidSchedule       = &Error{Kind: KindInvalidSchedule}
	ErrCascadeLimitExceeded  = &Error{Kind: KindCascadeLimit}
	ErrHandler               = &Error{Kind: KindHandler}
	ErrContextExpired        = &Error{Kind: KindContextExpired}
	ErrSimulationEnded       = &Error{Kind: KindSimulationEnded}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	switch {
	case e.Model != "" && e.Port != "":
		fmt.Fprintf(&b, " [%s.%s]", e.Model, e.Port)
	case e.Model != "":
		fmt.Fprintf(&b, " [%s]", e.Model)
	}
	if e.isRuntime() {
		fmt.Fprintf(&b, " at %v", e.Time)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) isRuntime() bool {
	switch e.Kind {
	case KindInvalidSchedule, KindCascadeLimit, KindHandler, KindContextExpired, KindSimulationEnded:
		return true
	}
	return false
}

// IsTerminal reports whether err only signals that the simulation has no more
// work before its bound. It is not a failure.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrSimulationEnded)
}
