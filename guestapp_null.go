// guestapp_null.go - placeholder for the out-of-scope bytecode engine
//
// The actual guest engine (the sandboxed bytecode interpreter that calls
// through the hostabi_*.go boundary) is an external black box per
// SPEC_FULL.md's Non-goals: this runtime defines and drives the host
// side of that boundary, but does not implement an interpreter. Until
// main.go is linked against a real one, NullGuestApp satisfies the
// GuestApp seam runtime.go needs so the frame loop, display, audio, and
// net layers are all exercised end to end.
package main

// NullGuestApp is a GuestApp that never calls back into the host ABI and
// never traps. It exists purely so Runtime has something to drive.
type NullGuestApp struct{}

func NewNullGuestApp(app FullID) *NullGuestApp { return &NullGuestApp{} }

func (*NullGuestApp) BindMemory(mem GuestMemory) {}
func (*NullGuestApp) Update(frame uint32) error  { return nil }
func (*NullGuestApp) Render() error              { return nil }
