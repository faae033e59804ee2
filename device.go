// device.go - capability bundle the host ABI and runtime are written against
//
// Generalizes the teacher's one-interface-per-chip seam (VideoOutput in
// video_interface.go) into one interface bundle for the whole host: every
// piece of core logic is written against Device, never against a concrete
// backend, so it can be driven by device_headless.go in tests and by
// device_ebiten.go/device_terminal.go at runtime.

package main

import "time"

// Device bundles every capability a running app can reach through the
// host ABI boundary.
type Device interface {
	Display() Display
	Input() Input2
	Clock() Clock
	FS() FS
	Net() Net
	RNG() RNG
	Log() Log
}

// Display presents the packed framebuffer to the user.
type Display interface {
	// Flush pushes fb's dirty region to the screen. Implementations should
	// no-op when fb.Dirty() is false.
	Flush(fb *FrameBuffer) error
	Close() error
}

// Input2 reports the current controller state. Named Input2 to avoid
// colliding with the netcode Input wire struct while keeping the name
// close to the concept it reports.
type Input2 interface {
	Poll() InputState
}

// InputState is a single frame's worth of controller input.
type InputState struct {
	PadX    int16
	PadY    int16
	Buttons uint8
}

// Clock is the host's notion of wall-clock time, abstracted so tests can
// supply a fake one.
type Clock interface {
	Now() time.Time
}

// FS is the persistent storage surface the fs host-ABI and Battery
// persistence are built on: a flat key path, loaded and dumped whole.
type FS interface {
	Load(path string) ([]byte, error)
	Dump(path string, data []byte) error
	Remove(path string) error
	Size(path string) (int64, error)
}

// Net sends and receives datagrams addressed by opaque peer handles, as
// used by the Connector and FrameSyncer.
type Net interface {
	// Send transmits raw to the peer at addr.
	Send(addr string, raw []byte) error
	// Recv returns the next received datagram and the address it came
	// from. It does not wait for one: when nothing is pending it returns
	// an error promptly (net_udp.go after a 1ms read deadline).
	Recv() (addr string, raw []byte, err error)
	LocalAddr() string
}

// RNG is a source of true (non-deterministic) randomness, used only to
// seed the guest-visible xorshift32 PRNG and to contribute material
// during Connector seed finalization. The app's own RNG calls never go
// through this directly.
type RNG interface {
	Uint32() uint32
}

// Log is the host-side diagnostic log sink. log_debug host ABI calls and
// internal diagnostics both go through this rather than directly through
// log/slog, so tests can assert on emitted messages.
type Log interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
