// device_headless.go - in-memory Device used by every test needing one
//
// Generalizes the teacher's *_headless.go sibling-file convention
// (video_backend_headless.go, audio_backend_headless.go) from "one fake
// per chip" to "one fake per host capability", all bundled behind a
// single HeadlessDevice.

package main

import (
	"fmt"
	"sync"
	"time"
)

// HeadlessDevice is an all-fake Device assembly: nothing it does touches
// a real screen, disk, network, or clock. Every field is safe to drive
// directly from a test.
type HeadlessDevice struct {
	display *headlessDisplay
	input   *headlessInput
	clock   *headlessClock
	fs      *headlessFS
	net     *headlessNet
	rng     *headlessRNG
	log     *headlessLog
}

// NewHeadlessDevice returns a fresh HeadlessDevice with deterministic
// defaults: a fixed clock, a fixed-seed (so exactly reproducible across
// runs) RNG, and empty storage/network state.
func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{
		display: &headlessDisplay{},
		input:   &headlessInput{},
		clock:   &headlessClock{now: time.Unix(0, 0)},
		fs:      newHeadlessFS(),
		net:     newHeadlessNet(),
		rng:     &headlessRNG{state: 0x2545F491},
		log:     &headlessLog{},
	}
}

func (d *HeadlessDevice) Display() Display { return d.display }
func (d *HeadlessDevice) Input() Input2    { return d.input }
func (d *HeadlessDevice) Clock() Clock     { return d.clock }
func (d *HeadlessDevice) FS() FS           { return d.fs }
func (d *HeadlessDevice) Net() Net         { return d.net }
func (d *HeadlessDevice) RNG() RNG         { return d.rng }
func (d *HeadlessDevice) Log() Log         { return d.log }

// headlessDisplay records the last flushed frame instead of drawing it.
type headlessDisplay struct {
	mu         sync.Mutex
	flushCount int
	lastFrame  [fbSize]byte
	closed     bool
}

func (h *headlessDisplay) Flush(fb *FrameBuffer) error {
	if !fb.Dirty() {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastFrame = fb.data
	h.flushCount++
	fb.Flush(func(i int, right, left Rgb16) {})
	return nil
}

func (h *headlessDisplay) Close() error {
	h.closed = true
	return nil
}

func (h *headlessDisplay) FlushCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushCount
}

// headlessInput is driven directly by a test via SetState.
type headlessInput struct {
	mu    sync.Mutex
	state InputState
}

func (h *headlessInput) Poll() InputState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *headlessInput) SetState(s InputState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
}

// headlessClock returns a fixed time unless advanced by a test.
type headlessClock struct {
	mu  sync.Mutex
	now time.Time
}

func (h *headlessClock) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *headlessClock) Advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

// headlessFS is an in-memory key/value store standing in for the layered
// rom/data/sys directories fs_host.go implements over the real
// filesystem.
type headlessFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newHeadlessFS() *headlessFS {
	return &headlessFS{files: map[string][]byte{}}
}

func (f *headlessFS) Load(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("headlessFS: not found: %s", path)
	}
	return append([]byte(nil), v...), nil
}

func (f *headlessFS) Dump(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = append([]byte(nil), data...)
	return nil
}

func (f *headlessFS) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *headlessFS) Size(path string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.files[path]
	if !ok {
		return 0, fmt.Errorf("headlessFS: not found: %s", path)
	}
	return int64(len(v)), nil
}

// headlessNet is an in-process datagram router: two HeadlessDevices can
// be wired to exchange packets by sharing a *headlessNetFabric. Recv
// returns an error immediately when the inbox is empty, matching
// net_udp.go's short-read-deadline contract that Connector/FrameSyncer's
// bounded drain loops depend on.
type headlessNet struct {
	addr    string
	fabric  *headlessNetFabric
	inbox   chan headlessDatagram
}

type headlessDatagram struct {
	from string
	raw  []byte
}

// headlessNetFabric connects a small set of headlessNet peers so sends
// from one land in another's inbox, modeling the Connector/FrameSyncer's
// peer-addressed UDP transport without touching a real socket.
type headlessNetFabric struct {
	mu    sync.Mutex
	peers map[string]*headlessNet
}

func newHeadlessNetFabric() *headlessNetFabric {
	return &headlessNetFabric{peers: map[string]*headlessNet{}}
}

func (f *headlessNetFabric) join(addr string) *headlessNet {
	n := &headlessNet{addr: addr, fabric: f, inbox: make(chan headlessDatagram, 64)}
	f.mu.Lock()
	f.peers[addr] = n
	f.mu.Unlock()
	return n
}

func newHeadlessNet() *headlessNet {
	return &headlessNet{addr: "headless:0", inbox: make(chan headlessDatagram, 64)}
}

func (n *headlessNet) Send(addr string, raw []byte) error {
	if n.fabric == nil {
		return nil
	}
	n.fabric.mu.Lock()
	peer, ok := n.fabric.peers[addr]
	n.fabric.mu.Unlock()
	if !ok {
		return fmt.Errorf("headlessNet: unknown peer %s", addr)
	}
	peer.inbox <- headlessDatagram{from: n.addr, raw: append([]byte(nil), raw...)}
	return nil
}

func (n *headlessNet) Recv() (string, []byte, error) {
	select {
	case d := <-n.inbox:
		return d.from, d.raw, nil
	default:
		return "", nil, fmt.Errorf("headlessNet: no datagram waiting")
	}
}

func (n *headlessNet) LocalAddr() string { return n.addr }

// headlessRNG is a deterministic xorshift32 generator so RNG-dependent
// tests are reproducible.
type headlessRNG struct {
	mu    sync.Mutex
	state uint32
}

func (r *headlessRNG) Uint32() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = xorshift32(r.state)
	return r.state
}

// headlessLog records emitted log lines instead of writing anywhere, so
// tests can assert on what was logged.
type headlessLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *headlessLog) Debug(msg string, args ...any) { l.record("DEBUG", msg, args...) }
func (l *headlessLog) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *headlessLog) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *headlessLog) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }

func (l *headlessLog) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *headlessLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
