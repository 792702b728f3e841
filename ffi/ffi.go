package ffi

import (
	"github.com/engramdb/engram/internal/boundary"
)

// Status is the tri-state result of every flat entry point.
type Status = boundary.Status

const (
	// StatusOK means success; output parameters are valid.
	StatusOK = boundary.StatusOK

	// StatusError means a reported failure; the error slot holds a
	// descriptive message.
	StatusError = boundary.StatusError

	// StatusFault means the wrapped logic panicked; the error slot
	// holds a generic message and no resource state is guaranteed.
	StatusFault = boundary.StatusFault
)

// Message is an owned text allocation crossing the boundary. Release
// it with FreeMessage exactly once.
type Message struct {
	text string
}

// String returns the message text. Reading a freed message is
// undefined.
func (m *Message) String() string {
	if m == nil {
		return ""
	}
	return m.text
}

// ErrorSlot is the caller-owned, one-shot error channel. The callee
// writes at most one message per call, releasing any prior occupant
// first; after the call the occupant (if any) belongs to the caller.
type ErrorSlot struct {
	Message *Message
}

// setError delivers msg into the slot, releasing the previous occupant
// so repeated failures on a shared slot never leak.
func setError(slot *ErrorSlot, msg string) {
	if slot == nil {
		return
	}
	if slot.Message != nil {
		FreeMessage(slot.Message)
		slot.Message = nil
	}
	slot.Message = newMessage(msg)
}

// run wraps an entry point body in the fault guard and routes the
// outcome into the error slot.
func run(slot *ErrorSlot, fn func() error) Status {
	status, err := boundary.Guard(fn)
	if err != nil {
		setError(slot, err.Error())
	}
	return status
}
