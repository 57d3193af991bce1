package store

import (
	"errors"
	"fmt"

	verrors "github.com/vango-dev/vstore/internal/errors"
)

// ErrListenerPanic is matched by every error reported for a panicking
// listener, selector or OnChange hook.
var ErrListenerPanic = errors.New("vstore: listener panicked")

// ErrProducerPanic is the rejection of a SetAsync call whose producer
// panicked.
var ErrProducerPanic = errors.New("vstore: producer panicked")

// ListenerPanicError describes a panic recovered during notification.
type ListenerPanicError struct {
	// Store is the name of the store being notified.
	Store string

	// Hook is true when the panic came from the OnChange hook.
	Hook bool

	// Value is the value passed to panic.
	Value any

	// Stack is the goroutine stack at the time of the panic.
	Stack []byte

	coded *verrors.Error
}

func newListenerPanic(store string, hook bool, r any, stack []byte) *ListenerPanicError {
	code := "E020"
	if hook {
		code = "E021"
	}
	return &ListenerPanicError{
		Store: store,
		Hook:  hook,
		Value: r,
		Stack: stack,
		coded: verrors.New(code).WithDetail(fmt.Sprint(r)).Wrap(ErrListenerPanic),
	}
}

// Error implements the error interface.
func (e *ListenerPanicError) Error() string {
	who := "listener"
	if e.Hook {
		who = "change hook"
	}
	return fmt.Sprintf("vstore: %s of store %q panicked: %v", who, e.Store, e.Value)
}

// Unwrap exposes the coded error so errors.Is(err, ErrListenerPanic) holds.
func (e *ListenerPanicError) Unwrap() error {
	return e.coded
}

func newProducerPanic(r any) error {
	return verrors.New("E022").WithDetail(fmt.Sprint(r)).Wrap(ErrProducerPanic)
}
