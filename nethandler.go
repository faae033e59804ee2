// nethandler.go - the tagged None/Connector/FrameSyncer slot
//
// Grounded on host/net.rs's take-out/operate/swap-back pattern. Go has no
// borrow checker to appease, so the swap dance is expressed directly as
// a mutex-guarded critical section: WithActive runs fn with whichever
// variant is currently active, or not at all if the handler is None.

package main

import "sync"

// NetKind tags which variant a NetHandler currently holds.
type NetKind int

const (
	NetNone NetKind = iota
	NetConnecting
	NetSyncing
)

// NetHandler holds at most one of {Connector, FrameSyncer} at a time.
// Transitions are one-way within a session: None -> Connecting ->
// Syncing -> None, matching spec.md's NetHandler state diagram.
type NetHandler struct {
	mu        sync.Mutex
	kind      NetKind
	connector *Connector
	syncer    *FrameSyncer
}

// Kind reports which variant is currently active.
func (h *NetHandler) Kind() NetKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kind
}

// Active reports whether the handler holds any variant at all - either
// the Connecting lobby/handshake phase or the Syncing session - matching
// host/fs.rs's DataFileInNet check (`!matches!(handler, NetHandler::None)`),
// which fires for both phases, not just an established session.
func (h *NetHandler) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kind != NetNone
}

// EnterLobby transitions None -> Connecting, installing c as the active
// Connector. No-op (does not replace the existing connector) if already
// connecting or syncing.
func (h *NetHandler) EnterLobby(c *Connector) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.kind != NetNone {
		return
	}
	h.kind = NetConnecting
	h.connector = c
}

// Disconnect transitions back to None from either other state, dropping
// whichever session object was active.
func (h *NetHandler) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.kind = NetNone
	h.connector = nil
	h.syncer = nil
}

// WithConnector runs fn with the active Connector, if the handler is
// currently in the Connecting state. If fn returns a non-nil FrameSyncer,
// the handler transitions to Syncing with that syncer installed -
// matching Connector.Finalize's role in the protocol.
func (h *NetHandler) WithConnector(fn func(*Connector) *FrameSyncer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.kind != NetConnecting || h.connector == nil {
		return
	}
	if syncer := fn(h.connector); syncer != nil {
		h.kind = NetSyncing
		h.connector = nil
		h.syncer = syncer
	}
}

// WithSyncer runs fn with the active FrameSyncer, if the handler is
// currently in the Syncing state.
func (h *NetHandler) WithSyncer(fn func(*FrameSyncer)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.kind != NetSyncing || h.syncer == nil {
		return
	}
	fn(h.syncer)
}

// Syncer returns the active FrameSyncer and true if the handler is
// currently in the Syncing state; used by read-only call sites (get_me,
// get_peers, save_stash) that don't need the WithSyncer closure form.
func (h *NetHandler) Syncer() (*FrameSyncer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.kind != NetSyncing || h.syncer == nil {
		return nil, false
	}
	return h.syncer, true
}
