package main

import "testing"

func newTestMiscState(t *testing.T) *State {
	t.Helper()
	dev := NewHeadlessDevice()
	s := NewState(FullID{Author: "alice", App: "snake"}, dev, 1)
	s.BindMemory(newFakeGuestMemory(256))
	return s
}

func TestReadPadReturnsPackedDeflection(t *testing.T) {
	s := newTestMiscState(t)
	dev := s.Device.(*HeadlessDevice)
	dev.input.SetState(InputState{PadX: 10, PadY: -5, Buttons: 0})
	in := NewInputABI(s)

	got := in.ReadPad(0)
	wantX := uint32(uint16(10))
	wantY := uint32(uint16(-5))
	if got>>16 != wantX || got&0xFFFF != wantY {
		t.Fatalf("got %#x, want high=%#x low=%#x", got, wantX, wantY)
	}
}

func TestReadPadRejectsNonZeroPlayer(t *testing.T) {
	s := newTestMiscState(t)
	in := NewInputABI(s)
	got := in.ReadPad(1)
	if got != uint32(padMissing)<<16|padMissing {
		t.Fatalf("got %#x, want the all-missing sentinel for player != 0", got)
	}
}

func TestReadButtonsReflectsPolledState(t *testing.T) {
	s := newTestMiscState(t)
	dev := s.Device.(*HeadlessDevice)
	dev.input.SetState(InputState{Buttons: runtimeButtonConfirm | runtimeButtonMenu})
	in := NewInputABI(s)
	if got := in.ReadButtons(0); got != uint32(runtimeButtonConfirm|runtimeButtonMenu) {
		t.Fatalf("got %#x, want %#x", got, runtimeButtonConfirm|runtimeButtonMenu)
	}
}

func TestReadButtonsRejectsNonZeroPlayer(t *testing.T) {
	s := newTestMiscState(t)
	in := NewInputABI(s)
	if got := in.ReadButtons(1); got != 0 {
		t.Fatalf("got %#x, want 0 for player != 0", got)
	}
}

func TestAddMenuItemRejectsInvalidIndex(t *testing.T) {
	s := newTestMiscState(t)
	m := NewMenuABI(s)
	dst, _ := s.Mem.Slice(0, 4)
	copy(dst, "oops")
	m.AddMenuItem(menuCustomSlots, 0, 4) // one past the last valid slot
	for _, it := range s.Menu.items {
		if it != nil {
			t.Fatalf("an out-of-range index must not install any item")
		}
	}
}

func TestAddMenuItemInstallsCustomLabel(t *testing.T) {
	s := newTestMiscState(t)
	m := NewMenuABI(s)
	dst, _ := s.Mem.Slice(0, 9)
	copy(dst, "launch-co")
	m.AddMenuItem(0, 0, 9)
	if s.Menu.items[0] == nil || s.Menu.items[0].Label != "launch-co" {
		t.Fatalf("AddMenuItem must install the decoded label at slot 0")
	}
	m.RemoveMenuItem(0)
	if s.Menu.items[0] != nil {
		t.Fatalf("RemoveMenuItem must clear the slot")
	}
}

func TestOpenMenuRequestsOpen(t *testing.T) {
	s := newTestMiscState(t)
	m := NewMenuABI(s)
	if s.Menu.Open() {
		t.Fatalf("menu should start closed")
	}
	m.OpenMenu()
	if !s.Menu.Open() {
		t.Fatalf("OpenMenu must open the menu")
	}
}

func TestSetSeedAndGetRandomAreDeterministic(t *testing.T) {
	s := newTestMiscState(t)
	m := NewMiscABI(s)
	m.SetSeed(12345)
	a := m.GetRandom()

	s2 := newTestMiscState(t)
	m2 := NewMiscABI(s2)
	m2.SetSeed(12345)
	b := m2.GetRandom()

	if a != b {
		t.Fatalf("got %d and %d, want equal draws from the same seed", a, b)
	}
}

func TestQuitSetsExit(t *testing.T) {
	s := newTestMiscState(t)
	m := NewMiscABI(s)
	if s.Exit {
		t.Fatalf("a fresh state should not start exited")
	}
	m.Quit()
	if !s.Exit {
		t.Fatalf("Quit must set State.Exit")
	}
}

func TestWasip1ABIStubsAreAllZeroOrVoid(t *testing.T) {
	var w Wasip1ABI
	if w.ArgsGet(0, 0) != 0 {
		t.Fatalf("ArgsGet must stub to 0")
	}
	if w.FdWrite(1, 0, 0, 0) != 0 {
		t.Fatalf("FdWrite must stub to 0")
	}
	w.ProcExit(1) // must not panic
}
