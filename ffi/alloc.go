package ffi

import "sync"

// Buffer is an owned byte sequence crossing the boundary. Release it
// with FreeBuffer exactly once.
type Buffer struct {
	Data []byte
}

// StringList is an owned ordered sequence of strings crossing the
// boundary. One FreeStringList call releases every string and the list.
type StringList struct {
	Strings []string
}

// ledger tracks every live allocation handed across the boundary, so
// tests can prove exactly-once release and leak-freedom. Entries are
// the allocation pointers themselves.
var ledger = struct {
	mu   sync.Mutex
	live map[any]struct{}
}{live: make(map[any]struct{})}

func track(p any) {
	ledger.mu.Lock()
	ledger.live[p] = struct{}{}
	ledger.mu.Unlock()
}

func untrack(p any) {
	ledger.mu.Lock()
	delete(ledger.live, p)
	ledger.mu.Unlock()
}

// LiveAllocations reports the number of boundary allocations not yet
// released. Intended for tests and leak diagnostics.
func LiveAllocations() int {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return len(ledger.live)
}

func newMessage(text string) *Message {
	m := &Message{text: text}
	track(m)
	return m
}

func newBuffer(data []byte) *Buffer {
	b := &Buffer{Data: data}
	track(b)
	return b
}

func newStringList(strings []string) *StringList {
	l := &StringList{Strings: strings}
	track(l)
	return l
}

// FreeMessage releases a message. Freeing nil is a no-op; freeing the
// same message twice is undefined.
func FreeMessage(m *Message) {
	if m == nil {
		return
	}
	untrack(m)
	m.text = ""
}

// FreeBuffer releases a buffer. Freeing nil is a no-op; freeing the
// same buffer twice is undefined.
func FreeBuffer(b *Buffer) {
	if b == nil {
		return
	}
	untrack(b)
	b.Data = nil
}

// FreeStringList releases a string list and all its strings. Freeing
// nil is a no-op; freeing the same list twice is undefined.
func FreeStringList(l *StringList) {
	if l == nil {
		return
	}
	untrack(l)
	l.Strings = nil
}

// FreeErrorSlot releases whatever message occupies the slot, if any.
// Safe on an empty slot.
func FreeErrorSlot(slot *ErrorSlot) {
	if slot == nil || slot.Message == nil {
		return
	}
	FreeMessage(slot.Message)
	slot.Message = nil
}
