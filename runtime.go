// runtime.go - the per-frame driver loop
//
// Grounded on runtime.rs: one tick polls input, advances whichever of
// {no session, handshake, lock-step session} is active, drives the
// guest's update/render callbacks, and flushes the framebuffer - with a
// trap from the guest engine replacing the frame with the error scene
// instead of unwinding out of the loop, and the menu/error overlays
// pre-empting the guest call entirely while they're active.
//
// The bytecode engine itself is an external black box (SPEC_FULL.md's
// Non-goals); GuestApp is the narrow seam runtime.go needs from it.

package main

import (
	"fmt"
	"time"
)

// GuestApp is what the runtime drives once an app is loaded: update
// advances simulation by one frame (using whatever host-ABI calls the
// guest makes along the way), render repaints the framebuffer. Both can
// fail with a trap, which the driver turns into an error scene rather
// than letting it unwind further.
type GuestApp interface {
	BindMemory(mem GuestMemory)
	Update(frame uint32) error
	Render() error
}

const (
	runtimeTickRate  = 60
	runtimeTickEvery = time.Second / runtimeTickRate

	// Button bit positions, matching the InputState.Buttons layout every
	// Input2 backend (device_ebiten.go, device_terminal.go,
	// device_headless.go) packs: bit 0 confirm/select, bit 1 secondary,
	// bit 2 menu.
	runtimeButtonConfirm = 1 << 0
	runtimeButtonMenu    = 1 << 2
)

// Runtime owns one running app's State plus the Device and services it
// was launched with, and drives it frame by frame until it exits or
// asks to switch apps.
type Runtime struct {
	device Device
	fs     OSFileSystemLike

	state *State
	app   GuestApp

	battery *Battery
	errScn  *ErrorScene

	frame uint32
}

// OSFileSystemLike is the filesystem surface Runtime itself needs
// directly (battery persistence, stats loading), independent of the
// fs/sudo host-ABI wrappers.
type OSFileSystemLike = FS

// NewRuntime builds a Runtime for app, freshly loaded from fs onto
// device. seed is the starting value of the app's guest-visible RNG; a
// multiplayer handshake draws its own seed material from device.RNG().
func NewRuntime(device Device, fs FS, app FullID, guest GuestApp, seed uint32) *Runtime {
	state := NewState(app, device, seed)
	if snap, err := LoadStatsSnapshot(fs, app); err == nil {
		state.Stats.Restore(snap)
	}
	return &Runtime{
		device:  device,
		fs:      fs,
		state:   state,
		app:     guest,
		battery: LoadBattery(fs),
	}
}

// BindMemory must be called once the guest engine has instantiated the
// app and its linear memory is addressable.
func (r *Runtime) BindMemory(mem GuestMemory) {
	r.state.BindMemory(mem)
	r.app.BindMemory(mem)
}

// Tick drives exactly one frame: input, net, guest update/render,
// display flush. It returns (exit, nextApp) reflecting misc.quit and
// sudo.run_app calls the guest may have made during this tick.
func (r *Runtime) Tick(now time.Time) (exit bool, nextApp *FullID) {
	input := r.device.Input().Poll()

	if r.errScn != nil {
		r.errScn.Update(input.Buttons&errorSceneActionMask, now)
		if r.errScn.Confirmed() {
			r.errScn = nil
		}
		return false, nil
	}

	menuAction, slot := r.state.Menu.Update(
		input.Buttons&runtimeButtonMenu != 0,
		input.Buttons&runtimeButtonConfirm != 0,
		input.PadY,
	)
	r.handleMenuAction(menuAction, slot)
	if r.state.Menu.Open() {
		return false, nil
	}

	r.tickNet(input)

	if err := r.app.Update(r.frame); err != nil {
		r.fail("update", err, now)
		return false, nil
	}
	if err := r.app.Render(); err != nil {
		r.fail("render", err, now)
		return false, nil
	}
	r.frame++

	if err := r.device.Display().Flush(r.state.FB); err != nil {
		if r.device.Log() != nil {
			r.device.Log().Error("display flush failed", "err", err)
		}
	}

	if r.state.Exit {
		return true, nil
	}
	if r.state.NextApp != nil {
		next := r.state.NextApp
		r.state.NextApp = nil
		return false, next
	}
	return false, nil
}

// tickNet drives whichever of {none, connecting, syncing} is active and
// feeds this frame's local input into an active session.
func (r *Runtime) tickNet(input InputState) {
	r.state.Net.WithConnector(func(c *Connector) *FrameSyncer {
		status := c.Update()
		if status == ConnectionLaunching {
			return c.Finalize()
		}
		return nil
	})
	r.state.Net.WithSyncer(func(f *FrameSyncer) {
		f.SetLocalState(Input{
			HasPad:  true,
			PadX:    input.PadX,
			PadY:    input.PadY,
			Buttons: input.Buttons,
		})
		if err := f.Update(); err != nil && r.device.Log() != nil {
			r.device.Log().Warn("net sync", "err", err)
		}
		if f.Ready() {
			f.Advance()
		}
	})
}

func (r *Runtime) handleMenuAction(action MenuAction, slot int) {
	switch action {
	case MenuActionQuit:
		r.state.Exit = true
	case MenuActionDisconnect:
		r.state.Net.Disconnect()
	case MenuActionConnect:
		c := NewConnector(r.device.Net(), r.device.Clock(), r.fs, r.device.RNG(), r.device.Log(), r.state.App.String())
		r.state.Net.EnterLobby(c)
	case MenuActionRestart:
		next := r.state.App
		r.state.NextApp = &next
	case MenuActionScreenshot:
		// Screenshot encoding is out of scope; the menu item exists to
		// match the built-in set but has nothing to encode to yet.
		if r.device.Log() != nil {
			r.device.Log().Info("menu: screenshot requested, not implemented")
		}
	}
}

// fail replaces the current frame with a fatal-error overlay, attributed
// to whichever host function was last entered.
func (r *Runtime) fail(stage string, err error, now time.Time) {
	rerr := &RuntimeError{Operation: r.state.LastCalled, Details: stage, Err: err}
	if r.device.Log() != nil {
		r.device.Log().Error("guest trap", "err", rerr)
	}
	r.errScn = NewErrorScene(fmt.Sprintf("%s\n%s", r.state.LastCalled, err), now)
}

// BatteryPercent reports the last-observed state of charge, for a menu
// or status-bar overlay to render.
func (r *Runtime) BatteryPercent() uint8 { return r.battery.Percent() }

// State exposes the running app's State for host-ABI wiring and for
// main.go, which hands its AudioGraph to the audio sink.
func (r *Runtime) State() *State { return r.state }
