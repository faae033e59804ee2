package main

import "testing"

func newTestAudioState(t *testing.T) (*State, *AudioABI) {
	t.Helper()
	dev := NewHeadlessDevice()
	s := NewState(FullID{Author: "alice", App: "snake"}, dev, 1)
	s.BindMemory(newFakeGuestMemory(256))
	a := NewAudioABI(s, dev.FS())
	return s, a
}

func TestAddSineCreatesRootNode(t *testing.T) {
	s, a := newTestAudioState(t)
	id := a.AddSine(0, 440, 0)
	if id == 0 {
		t.Fatalf("AddSine should return a nonzero node id")
	}
	n, err := s.Audio.GetNode(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.kind != audioKindSine {
		t.Fatalf("got kind %v, want audioKindSine", n.kind)
	}
}

func TestAddNodeWithInvalidParentReturnsZero(t *testing.T) {
	_, a := newTestAudioState(t)
	if id := a.AddGain(999, 2); id != 0 {
		t.Fatalf("got id %d, want 0 for an unknown parent", id)
	}
}

func TestAddFileDecodesPCM16AndLoadsFromROM(t *testing.T) {
	s, a := newTestAudioState(t)
	raw := []byte{0x00, 0x40, 0xff, 0xbf} // 0x4000 then 0xbfff (negative)
	if err := s.Device.FS().Dump("roms/alice/snake/blip.pcm", raw); err != nil {
		t.Fatalf("unexpected error seeding rom file: %v", err)
	}
	dst, _ := s.Mem.Slice(0, 8)
	copy(dst, "blip.pcm")

	id := a.AddFile(0, 0, 8)
	if id == 0 {
		t.Fatalf("AddFile should succeed when the ROM asset exists")
	}
	n, _ := s.Audio.GetNode(id)
	if len(n.pcm) != 2 {
		t.Fatalf("got %d decoded samples, want 2", len(n.pcm))
	}
}

func TestAddFileMissingAssetReturnsZero(t *testing.T) {
	s, a := newTestAudioState(t)
	dst, _ := s.Mem.Slice(0, 8)
	copy(dst, "nope.pcm")
	if id := a.AddFile(0, 0, 8); id != 0 {
		t.Fatalf("got id %d, want 0 for a missing ROM asset", id)
	}
}

func TestDecodePCM16RoundTrip(t *testing.T) {
	out := decodePCM16([]byte{0x00, 0x00, 0xff, 0x7f, 0x00, 0x80})
	if out[0] != 0 {
		t.Fatalf("got %v, want 0", out[0])
	}
	if out[1] <= 0.99 || out[1] > 1.0 {
		t.Fatalf("got %v, want close to +1.0 for max positive sample", out[1])
	}
	if out[2] != -1.0 {
		t.Fatalf("got %v, want -1.0 for min negative sample", out[2])
	}
}

func TestModLinearRejectsOutOfRangeParam(t *testing.T) {
	s, a := newTestAudioState(t)
	id := a.AddGain(0, 1)
	a.ModLinear(id, 9, 0, 1, 0, 100) // param index 9 is out of range (0-8)
	n, _ := s.Audio.GetNode(id)
	if n.modulators[0] != nil {
		t.Fatalf("an out-of-range param index must not install a modulator")
	}
}

func TestModSineInstallsModulator(t *testing.T) {
	s, a := newTestAudioState(t)
	id := a.AddGain(0, 1)
	a.ModSine(id, 0, 1, 0, 2)
	n, _ := s.Audio.GetNode(id)
	if n.modulators[0] == nil {
		t.Fatalf("ModSine should install a modulator on param 0")
	}
}

func TestResetClearAndResetAllDelegateToGraph(t *testing.T) {
	s, a := newTestAudioState(t)
	parent := a.AddMix(0)
	child := a.AddZero(parent)

	a.Clear(parent)
	if _, err := s.Audio.GetNode(child); err != ErrOutOfBounds {
		t.Fatalf("Clear must delete the child node via the graph")
	}

	a.Reset(parent)
	a.ResetAll(parent)
	if s.LastCalled != "reset_all" {
		t.Fatalf("LastCalled = %q, want reset_all", s.LastCalled)
	}
}
