package main

import "testing"

func newTestNetState(t *testing.T) (*State, *NetABI) {
	t.Helper()
	dev := NewHeadlessDevice()
	s := NewState(FullID{Author: "alice", App: "snake"}, dev, 1)
	s.BindMemory(newFakeGuestMemory(256))
	n := NewNetABI(s, dev.FS())
	return s, n
}

func activeSyncer(s *State, peers []*FSPeer) {
	f := &FrameSyncer{peers: peers}
	s.Net.EnterLobby(&Connector{})
	s.Net.WithConnector(func(*Connector) *FrameSyncer { return f })
}

func TestGetMeWithNoActiveSessionReturnsSentinel(t *testing.T) {
	_, n := newTestNetState(t)
	if got := n.GetMe(); got != 0xFFFFFFFF {
		t.Fatalf("got %#x, want 0xFFFFFFFF with no active session", got)
	}
}

func TestGetMeFindsLocalPeerIndex(t *testing.T) {
	s, n := newTestNetState(t)
	activeSyncer(s, []*FSPeer{
		{Addr: "192.0.2.1:9"},
		{Addr: connectorLocalPeerAddr},
	})
	if got := n.GetMe(); got != 1 {
		t.Fatalf("got %d, want 1 (local peer is second in the list)", got)
	}
}

func TestGetPeersWithNoActiveSessionReturnsZero(t *testing.T) {
	_, n := newTestNetState(t)
	if got := n.GetPeers(); got != 0 {
		t.Fatalf("got %#x, want 0 with no active session", got)
	}
}

func TestGetPeersBitsetCoversEveryPeer(t *testing.T) {
	s, n := newTestNetState(t)
	activeSyncer(s, []*FSPeer{
		{Addr: connectorLocalPeerAddr},
		{Addr: "192.0.2.1:9"},
		{Addr: "192.0.2.2:9"},
	})
	if got := n.GetPeers(); got != 0b111 {
		t.Fatalf("got %#b, want 0b111 for three connected peers", got)
	}
}

func TestSaveStashWritesLocalPeerStash(t *testing.T) {
	s, n := newTestNetState(t)
	activeSyncer(s, []*FSPeer{{Addr: connectorLocalPeerAddr}})

	payload := []byte("progress-blob")
	dst, err := s.Mem.Slice(0, uint32(len(payload)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	copy(dst, payload)

	n.SaveStash(0, 0, uint32(len(payload)))

	got, err := s.Device.FS().Load("data/alice/snake/stash")
	if err != nil {
		t.Fatalf("unexpected error loading stash: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestSaveStashRejectsForeignPeerID(t *testing.T) {
	s, n := newTestNetState(t)
	activeSyncer(s, []*FSPeer{
		{Addr: connectorLocalPeerAddr},
		{Addr: "192.0.2.1:9"},
	})
	dst, _ := s.Mem.Slice(0, 4)
	copy(dst, "data")

	n.SaveStash(1, 0, 4) // peer 1 is remote, not the local device

	if _, err := s.Device.FS().Load("data/alice/snake/stash"); err == nil {
		t.Fatalf("save_stash must refuse to write a foreign peer's stash")
	}
}

func TestSaveStashWithNoActiveSessionIsNoop(t *testing.T) {
	s, n := newTestNetState(t)
	dst, _ := s.Mem.Slice(0, 4)
	copy(dst, "data")
	n.SaveStash(0, 0, 4)
	if _, err := s.Device.FS().Load("data/alice/snake/stash"); err == nil {
		t.Fatalf("save_stash must be a no-op without an active session")
	}
}
