// memaccess.go - guest-linear-memory access and the ptr/len split helper
//
// Every host ABI function is handed a *MemAccess instead of touching the
// engine's memory handle directly, so bounds-checking and the
// aliasing-rejection rule for two-slice calls (e.g. draw_text's text and
// font pointers) live in one place instead of being re-derived per call.

package main

import (
	"errors"
	"unicode/utf8"
)

// ErrNoMemory is returned when the engine has not yet bound linear memory
// to the running app (matches MemoryNotFound in spec.md's error taxonomy).
var ErrNoMemory = errors.New("hostabi: guest linear memory not bound")

// ErrOutOfBounds is returned when a ptr/len pair does not fit inside the
// guest's linear memory, including the overflow case where ptr+len wraps.
var ErrOutOfBounds = errors.New("hostabi: pointer/length out of bounds")

// ErrOverlap is returned when two guest pointer ranges that a host
// function needs to borrow independently (one immutable, one mutable, or
// two immutable slices that must not alias) overlap.
var ErrOverlap = errors.New("hostabi: guest pointer ranges overlap")

// GuestMemory is the narrow seam onto the bytecode engine's linear
// memory. The engine itself is an external black box (spec.md's
// Non-goals); this is the one method the host ABI needs from it.
type GuestMemory interface {
	// Bytes returns the engine's whole linear memory as a single slice,
	// valid until the next guest call that can grow memory.
	Bytes() []byte
}

// MemAccess wraps an optional GuestMemory handle with the bounds-checked
// slice helpers every hostabi_*.go function uses. A nil handle (memory
// not yet bound) makes every Slice/Split call fail with ErrNoMemory
// rather than panicking.
type MemAccess struct {
	mem GuestMemory
}

// NewMemAccess wraps mem, which may be nil if the engine has not bound
// linear memory to the app yet.
func NewMemAccess(mem GuestMemory) *MemAccess {
	return &MemAccess{mem: mem}
}

func (m *MemAccess) data() ([]byte, error) {
	if m == nil || m.mem == nil {
		return nil, ErrNoMemory
	}
	return m.mem.Bytes(), nil
}

// inBounds reports whether [ptr, ptr+length) fits inside an n-byte
// buffer, rejecting the wraparound case where ptr+length overflows
// uint32 arithmetic.
func inBounds(ptr, length uint32, n int) bool {
	end := ptr + length
	if end < ptr {
		return false // wrapped
	}
	return uint64(end) <= uint64(n)
}

// Slice returns the guest-memory bytes at [ptr, ptr+length).
func (m *MemAccess) Slice(ptr, length uint32) ([]byte, error) {
	data, err := m.data()
	if err != nil {
		return nil, err
	}
	if !inBounds(ptr, length, len(data)) {
		return nil, ErrOutOfBounds
	}
	return data[ptr : ptr+length], nil
}

// String decodes the guest-memory bytes at [ptr, ptr+length) as UTF-8.
func (m *MemAccess) String(ptr, length uint32) (string, error) {
	b, err := m.Slice(ptr, length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("hostabi: not valid UTF-8")
	}
	return string(b), nil
}

// rangesOverlap reports whether [aPtr,aPtr+aLen) and [bPtr,bPtr+bLen)
// share any byte, treating equal pointers (zero-length or not) as
// overlapping too - DrawText in hostabi_graphics.go needs two genuinely
// disjoint borrows, and two ranges starting at the same address can
// never be disjoint regardless of length.
func rangesOverlap(aPtr, aLen, bPtr, bLen uint32) bool {
	if aPtr == bPtr {
		return true
	}
	aEnd := aPtr + aLen
	bEnd := bPtr + bLen
	return aPtr < bEnd && bPtr < aEnd
}

// SplitImmutMut returns a read-only slice for (aPtr,aLen) and an
// independent mutable slice for (bPtr,bLen), after verifying both are
// in-bounds and do not overlap. Splitting the underlying array at
// whichever pointer comes first - rather than taking two overlapping
// full-length slices - is what lets the two results be used together
// without the compiler (or a reviewer) suspecting aliasing.
func (m *MemAccess) SplitImmutMut(aPtr, aLen, bPtr, bLen uint32) (a []byte, b []byte, err error) {
	data, err := m.data()
	if err != nil {
		return nil, nil, err
	}
	if !inBounds(aPtr, aLen, len(data)) || !inBounds(bPtr, bLen, len(data)) {
		return nil, nil, ErrOutOfBounds
	}
	if rangesOverlap(aPtr, aLen, bPtr, bLen) {
		return nil, nil, ErrOverlap
	}
	if aPtr <= bPtr {
		mid := data[aPtr:]
		split := bPtr - aPtr
		return mid[:aLen], mid[split : split+bLen], nil
	}
	mid := data[bPtr:]
	split := aPtr - bPtr
	return mid[split : split+aLen], mid[:bLen], nil
}
