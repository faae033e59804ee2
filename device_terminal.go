// device_terminal.go - ANSI-terminal Display+Input2 backend
//
// Grounded on terminal_host.go (raw-mode stdin capture via
// golang.org/x/term, CR/DEL translation) and video_terminal.go (palette-
// to-terminal-color redraw), folded into one backend and retargeted
// from MMIO byte-stream registers to InputState polling and the packed
// 4-bpp FrameBuffer. Intended as a low-fidelity fallback display for
// headless servers/CI where a real window isn't available: each logical
// pixel row is rendered as one half-height 24-bit-color ANSI cell (two
// source rows per printed row, using the upper-half-block
// glyph, matching the "two pixels per terminal cell" trick the original
// text-mode console code uses to approximate square pixels).
package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"golang.org/x/term"
)

// TerminalDisplay renders the framebuffer as 24-bit ANSI colors directly to an io.Writer (os.Stdout in production).
type TerminalDisplay struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminalDisplay returns a Display that writes ANSI escape sequences
// to out.
func NewTerminalDisplay(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{out: out}
}

// Flush redraws the whole frame, homing the cursor first, if fb is
// dirty. Rows are paired two source rows per printed line: the top row
// becomes the foreground color of an upper-half-block (▀) glyph, the
// bottom row its background, so each terminal cell shows two vertically
// stacked pixels.
func (d *TerminalDisplay) Flush(fb *FrameBuffer) error {
	if !fb.Dirty() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var b []byte
	b = append(b, "\x1b[H"...)
	for y := 0; y < FBHeight; y += 2 {
		for x := 0; x < FBWidth; x++ {
			top := fb.ColorAt(x, y)
			bottom := top
			if y+1 < FBHeight {
				bottom = fb.ColorAt(x, y+1)
			}
			tr, tg, tb := top.RGB888()
			br, bg, bb := bottom.RGB888()
			b = append(b, fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				tr, tg, tb, br, bg, bb)...)
		}
		b = append(b, "\x1b[0m\r\n"...)
	}
	_, err := d.out.Write(b)
	fb.Flush(func(int, Rgb16, Rgb16) {}) // clear the dirty flag for real
	return err
}

func (d *TerminalDisplay) Close() error { return nil }

// TerminalInput reads raw stdin in a background goroutine (after putting
// the terminal into raw mode) and maps arrow keys plus z/x/Esc onto
// InputState, matching terminal_host.go's raw-mode-capture shape.
type TerminalInput struct {
	mu    sync.Mutex
	state InputState

	fd       int
	oldState *term.State
	stopCh   chan struct{}
	done     chan struct{}
}

// NewTerminalInput puts stdin into raw, non-blocking mode and starts
// reading it on a background goroutine. Call Stop to restore the
// terminal.
func NewTerminalInput() (*TerminalInput, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("device_terminal: raw mode: %w", err)
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, oldState)
		return nil, fmt.Errorf("device_terminal: nonblocking stdin: %w", err)
	}
	in := &TerminalInput{fd: fd, oldState: oldState, stopCh: make(chan struct{}), done: make(chan struct{})}
	go in.readLoop()
	return in, nil
}

func (in *TerminalInput) readLoop() {
	defer close(in.done)
	buf := make([]byte, 16)
	for {
		select {
		case <-in.stopCh:
			return
		default:
		}
		n, err := syscall.Read(in.fd, buf)
		if n <= 0 || err != nil {
			continue
		}
		in.handleBytes(buf[:n])
	}
}

// handleBytes decodes raw escape sequences for arrow keys (CSI 'A'/'B'/
// 'C'/'D') and single-byte bindings for z/x/Esc, updating state. Unlike
// the original's line-buffered MMIO ring, this keeps only the latest
// level state per key: there is no per-keystroke event queue here
// because InputState is a polled snapshot, not a stream.
func (in *TerminalInput) handleBytes(b []byte) {
	in.mu.Lock()
	defer in.mu.Unlock()
	const deflect = int16(1 << 14)
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case 'z', 'Z':
			in.state.Buttons |= 1 << 0
		case 'x', 'X':
			in.state.Buttons |= 1 << 1
		case 0x1b:
			if i+2 < len(b) && b[i+1] == '[' {
				switch b[i+2] {
				case 'A':
					in.state.PadY = -deflect
				case 'B':
					in.state.PadY = deflect
				case 'C':
					in.state.PadX = deflect
				case 'D':
					in.state.PadX = -deflect
				}
				i += 2
				continue
			}
			in.state.Buttons |= 1 << 2 // bare Esc: menu button
		}
	}
}

// Poll returns the latest decoded state and resets the pad deflection
// (arrow keys act as single-tick taps in this backend, since a raw
// terminal gives no key-release events).
func (in *TerminalInput) Poll() InputState {
	in.mu.Lock()
	defer in.mu.Unlock()
	s := in.state
	in.state = InputState{}
	return s
}

// Stop restores the terminal to its original mode.
func (in *TerminalInput) Stop() error {
	close(in.stopCh)
	<-in.done
	return term.Restore(in.fd, in.oldState)
}
