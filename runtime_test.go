package main

import (
	"errors"
	"testing"
	"time"
)

// fakeGuestApp is a trivial GuestApp whose Update/Render behavior a test
// controls directly, standing in for the out-of-scope bytecode engine.
type fakeGuestApp struct {
	updateErr  error
	renderErr  error
	updateCalls int
	renderCalls int
}

func (f *fakeGuestApp) BindMemory(mem GuestMemory) {}
func (f *fakeGuestApp) Update(frame uint32) error  { f.updateCalls++; return f.updateErr }
func (f *fakeGuestApp) Render() error              { f.renderCalls++; return f.renderErr }

func newTestRuntime(t *testing.T, app GuestApp) (*Runtime, *HeadlessDevice) {
	t.Helper()
	dev := NewHeadlessDevice()
	fs := dev.FS()
	rt := NewRuntime(dev, fs, FullID{Author: "alice", App: "snake"}, app, 1)
	rt.BindMemory(newFakeGuestMemory(256))
	return rt, dev
}

func TestTickDrivesGuestUpdateAndRenderThenFlushes(t *testing.T) {
	app := &fakeGuestApp{}
	rt, dev := newTestRuntime(t, app)
	rt.state.FB.MarkDirty() // stands in for the guest drawing during render

	exit, next := rt.Tick(time.Unix(0, 0))
	if exit || next != nil {
		t.Fatalf("a clean tick should not exit or switch apps")
	}
	if app.updateCalls != 1 || app.renderCalls != 1 {
		t.Fatalf("got update=%d render=%d calls, want 1 each", app.updateCalls, app.renderCalls)
	}
	if dev.display.FlushCount() != 1 {
		t.Fatalf("got %d flushes, want 1", dev.display.FlushCount())
	}
}

func TestTickTrapsGuestUpdateErrorIntoErrorScene(t *testing.T) {
	app := &fakeGuestApp{updateErr: errors.New("boom")}
	rt, dev := newTestRuntime(t, app)

	exit, next := rt.Tick(time.Unix(0, 0))
	if exit || next != nil {
		t.Fatalf("a trapped tick should not exit or switch apps by itself")
	}
	if app.renderCalls != 0 {
		t.Fatalf("render must not run after update traps")
	}
	if dev.display.FlushCount() != 0 {
		t.Fatalf("a trapped tick must not flush the framebuffer")
	}
	if rt.errScn == nil {
		t.Fatalf("a guest update error must open an error scene")
	}
}

func TestTickErrorScenePreemptsGuestUntilConfirmed(t *testing.T) {
	app := &fakeGuestApp{updateErr: errors.New("boom")}
	rt, dev := newTestRuntime(t, app)
	start := time.Unix(0, 0)
	rt.Tick(start)
	if rt.errScn == nil {
		t.Fatalf("setup: expected an open error scene")
	}

	dev.input.SetState(InputState{Buttons: errorSceneActionMask})
	rt.Tick(start.Add(600 * time.Millisecond)) // press, past the confirm delay
	if app.updateCalls != 1 {
		t.Fatalf("the guest must not run while the error scene is open")
	}

	dev.input.SetState(InputState{})
	rt.Tick(start.Add(700 * time.Millisecond)) // release: confirms
	if rt.errScn != nil {
		t.Fatalf("a confirmed error scene must close")
	}

	rt.Tick(start.Add(800 * time.Millisecond))
	if app.updateCalls != 2 {
		t.Fatalf("the guest must resume running once the error scene closes")
	}
}

func TestTickMenuPreemptsGuestWhileOpen(t *testing.T) {
	app := &fakeGuestApp{}
	rt, dev := newTestRuntime(t, app)

	dev.input.SetState(InputState{Buttons: runtimeButtonMenu})
	rt.Tick(time.Unix(0, 0)) // press opens the menu
	if !rt.state.Menu.Open() {
		t.Fatalf("setup: expected the menu to be open")
	}
	if app.updateCalls != 0 {
		t.Fatalf("the guest must not run while the menu is open")
	}
}

func TestTickQuitViaMiscABIExits(t *testing.T) {
	app := &fakeGuestApp{}
	rt, _ := newTestRuntime(t, app)
	m := NewMiscABI(rt.state)
	m.Quit()

	exit, _ := rt.Tick(time.Unix(0, 0))
	if !exit {
		t.Fatalf("State.Exit must cause Tick to report exit=true")
	}
}

func TestTickRunAppSignalsNextApp(t *testing.T) {
	app := &fakeGuestApp{}
	rt, _ := newTestRuntime(t, app)
	su := NewSudoABI(rt.state, &fakeSudoFS{files: map[string][]byte{}, dirs: map[string][]string{}})
	author, appName := "bob", "pong"
	dst, _ := rt.state.Mem.Slice(0, uint32(len(author)+len(appName)))
	copy(dst, author)
	copy(dst[len(author):], appName)
	su.RunApp(0, uint32(len(author)), uint32(len(author)), uint32(len(appName)))

	exit, next := rt.Tick(time.Unix(0, 0))
	if exit {
		t.Fatalf("switching apps is not the same as exiting")
	}
	if next == nil || next.Author != author || next.App != appName {
		t.Fatalf("got next=%+v, want author=%q app=%q", next, author, appName)
	}
}

func TestHandleMenuActionConnectEntersLobby(t *testing.T) {
	app := &fakeGuestApp{}
	rt, _ := newTestRuntime(t, app)
	if rt.state.Net.Kind() != NetNone {
		t.Fatalf("setup: expected NetNone")
	}
	rt.handleMenuAction(MenuActionConnect, 0)
	if rt.state.Net.Kind() != NetConnecting {
		t.Fatalf("MenuActionConnect must enter the connecting state")
	}
}

func TestBatteryPercentIsReadable(t *testing.T) {
	app := &fakeGuestApp{}
	rt, _ := newTestRuntime(t, app)
	if p := rt.BatteryPercent(); p > 100 {
		t.Fatalf("got %d, want a value in [0,100]", p)
	}
}
