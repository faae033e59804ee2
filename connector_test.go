package main

import (
	"testing"
	"time"
)

// wireConnectorPair returns two Connectors joined over a shared in-process
// net fabric, each already aware of the other as a peer, standing in for
// two devices that discovered each other before the handshake began.
func wireConnectorPair(t *testing.T) (a, b *Connector, clock *headlessClock, fsA, fsB *headlessFS) {
	t.Helper()
	fabric := newHeadlessNetFabric()
	netA := fabric.join("a")
	netB := fabric.join("b")
	clock = &headlessClock{now: time.Unix(1000, 0)}
	fsA = newHeadlessFS()
	fsB = newHeadlessFS()
	rngA := &headlessRNG{state: 1}
	rngB := &headlessRNG{state: 2}

	a = NewConnector(netA, clock, fsA, rngA, nil, "alice")
	b = NewConnector(netB, clock, fsB, rngB, nil, "bob")
	a.AddPeer("b", "bob")
	b.AddPeer("a", "alice")
	return a, b, clock, fsA, fsB
}

func TestConnectorHandshakeReachesLaunching(t *testing.T) {
	a, b, _, _, _ := wireConnectorPair(t)

	if err := a.SetApp(FullID{Author: "alice", App: "snake"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var statusA, statusB ConnectionStatus
	for i := 0; i < 20; i++ {
		statusA = a.Update()
		statusB = b.Update()
		if statusA == ConnectionLaunching && statusB == ConnectionLaunching {
			break
		}
	}
	if statusA != ConnectionLaunching {
		t.Fatalf("got statusA=%v, want ConnectionLaunching", statusA)
	}
	if statusB != ConnectionLaunching {
		t.Fatalf("got statusB=%v, want ConnectionLaunching", statusB)
	}
}

func TestConnectorSetAppFirstChoiceWins(t *testing.T) {
	a, _, _, _, _ := wireConnectorPair(t)
	first := FullID{Author: "alice", App: "snake"}
	second := FullID{Author: "alice", App: "pong"}

	if err := a.SetApp(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.SetApp(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *a.app != first {
		t.Fatalf("got %+v, want the first app picked (%+v) to stick", *a.app, first)
	}
}

func TestConnectorFinalizeProducesSyncerWithBothPeers(t *testing.T) {
	a, b, _, _, _ := wireConnectorPair(t)
	a.SetApp(FullID{Author: "alice", App: "snake"})

	for i := 0; i < 20; i++ {
		if a.Update() == ConnectionLaunching && b.Update() == ConnectionLaunching {
			break
		}
	}

	syncer := a.Finalize()
	if len(syncer.peers) != 2 {
		t.Fatalf("got %d peers, want 2", len(syncer.peers))
	}
	if syncer.app != (FullID{Author: "alice", App: "snake"}) {
		t.Fatalf("got app %+v, want the app picked during the handshake", syncer.app)
	}
}

func TestConnectorTimesOutWithoutAllPeersReady(t *testing.T) {
	a, _, clock, _, _ := wireConnectorPair(t)
	a.SetApp(FullID{Author: "alice", App: "snake"})
	a.Update() // starts the timeout clock

	clock.Advance(connectorStartTimeout + time.Second)
	if got := a.Update(); got != ConnectionTimeout {
		t.Fatalf("got %v, want ConnectionTimeout", got)
	}
}

func TestGetFriendIDIsStableAcrossCalls(t *testing.T) {
	fs := newHeadlessFS()
	first := getFriendID(fs, "bob")
	second := getFriendID(fs, "bob")
	if first == nil || second == nil || *first != *second {
		t.Fatalf("got %v and %v, want the same id for the same name", first, second)
	}
}

func TestGetFriendIDAssignsDistinctIDs(t *testing.T) {
	fs := newHeadlessFS()
	a := getFriendID(fs, "alice")
	b := getFriendID(fs, "bob")
	if a == nil || b == nil || *a == *b {
		t.Fatalf("got %v and %v, want distinct ids for distinct names", a, b)
	}
}

func TestGetFriendIDRejectsOverlongNames(t *testing.T) {
	fs := newHeadlessFS()
	if id := getFriendID(fs, "this-name-is-way-too-long-to-be-tracked"); id != nil {
		t.Fatalf("got %v, want nil for a name over 16 bytes", id)
	}
}
