package main

import "testing"

func TestNewStateZeroSeedRemapped(t *testing.T) {
	dev := NewHeadlessDevice()
	s := NewState(FullID{Author: "alice", App: "snake"}, dev, 0)
	if s.RNG.Next() == 0 {
		t.Fatalf("a zero seed should not produce a zero-stuck RNG")
	}
	if s.Exit {
		t.Fatalf("a fresh State should not start exited")
	}
	if s.Menu == nil || s.Stats == nil || s.Net == nil || s.Audio == nil {
		t.Fatalf("NewState must populate every owned sub-component")
	}
}

func TestStateResetReusesFrameBufferPointer(t *testing.T) {
	dev := NewHeadlessDevice()
	s := NewState(FullID{Author: "alice", App: "snake"}, dev, 1)
	fb := s.FB
	s.FB.SetPixel(1, 1, 3)
	s.Exit = true
	s.LastCalled = "graphics.draw_point"

	s.Reset(FullID{Author: "bob", App: "pong"}, 2)

	if s.FB != fb {
		t.Fatalf("Reset must reuse the existing *FrameBuffer, not reallocate it")
	}
	if s.Exit {
		t.Fatalf("Reset must clear Exit")
	}
	if s.LastCalled != "" {
		t.Fatalf("Reset must clear LastCalled, got %q", s.LastCalled)
	}
	if s.App.Author != "bob" || s.App.App != "pong" {
		t.Fatalf("Reset must update App, got %+v", s.App)
	}
	if s.Mem != nil {
		t.Fatalf("Reset must clear Mem: the new app has not bound memory yet")
	}
}

func TestStateBindMemory(t *testing.T) {
	dev := NewHeadlessDevice()
	s := NewState(FullID{Author: "alice", App: "snake"}, dev, 1)
	if s.Mem != nil {
		t.Fatalf("Mem must be nil before BindMemory")
	}
	s.BindMemory(newFakeGuestMemory(16))
	if s.Mem == nil {
		t.Fatalf("BindMemory must set Mem")
	}
	if _, err := s.Mem.Slice(0, 4); err != nil {
		t.Fatalf("unexpected error after BindMemory: %v", err)
	}
}
