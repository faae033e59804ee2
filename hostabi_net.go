// hostabi_net.go - multiplayer-session sub-ABI exposed to the guest once
// a FrameSyncer is active
//
// Grounded on host/net.rs. get_me/get_peers let the guest address peers
// by their stable index into the syncer's peer list; save_stash writes
// back to this device's own persisted stash. Writing a stash entry on
// behalf of a remote peer is left unimplemented: spec.md marks the
// semantics for that case as an unresolved open question in the
// original sources, so it is logged and rejected rather than guessed at.

package main

// NetABI implements the net sub-ABI against one running app's State.
type NetABI struct {
	s  *State
	fs FS
}

// NewNetABI wires a NetABI to s, persisting the stash file through fs.
func NewNetABI(s *State, fs FS) *NetABI {
	return &NetABI{s: s, fs: fs}
}

func (n *NetABI) enter(name string) {
	n.s.LastCalled = name
}

func (n *NetABI) logErr(name, msg string) {
	if n.s.Device != nil {
		n.s.Device.Log().Warn("net." + name + ": " + msg)
	}
}

// GetMe returns the local device's own index into the active session's
// peer list, or 0xFFFFFFFF if no session is active.
func (n *NetABI) GetMe() uint32 {
	n.enter("get_me")
	syncer, ok := n.s.Net.Syncer()
	if !ok {
		n.logErr("get_me", "no active session")
		return 0xFFFFFFFF
	}
	idx, ok := syncerPeerIndex(syncer, connectorLocalPeerAddr)
	if !ok {
		n.logErr("get_me", "local device missing from peer list")
		return 0xFFFFFFFF
	}
	return idx
}

// GetPeers returns a bitset with bit i set for every connected peer
// index i (including the local device's own index), or 0 if no session
// is active.
func (n *NetABI) GetPeers() uint32 {
	n.enter("get_peers")
	syncer, ok := n.s.Net.Syncer()
	if !ok {
		n.logErr("get_peers", "no active session")
		return 0
	}
	var bits uint32
	for i := range syncerPeerAddrs(syncer) {
		bits |= 1 << uint(i)
	}
	return bits
}

// SaveStash persists a multiplayer-shared blob. Only peer_id == get_me()
// (the local device's own stash slot) is supported; any other peer_id is
// rejected and logged, since the original leaves cross-device stash
// writes unspecified.
func (n *NetABI) SaveStash(peerID, ptr, length uint32) {
	n.enter("save_stash")
	syncer, ok := n.s.Net.Syncer()
	if !ok {
		n.logErr("save_stash", "no active session")
		return
	}
	meIdx, ok := syncerPeerIndex(syncer, connectorLocalPeerAddr)
	if !ok || peerID != meIdx {
		n.logErr("save_stash", "writing another peer's stash is not supported")
		return
	}
	data, err := n.s.Mem.Slice(ptr, length)
	if err != nil {
		n.logErr("save_stash", err.Error())
		return
	}
	path := "data/" + n.s.App.Author + "/" + n.s.App.App + "/stash"
	if err := n.fs.Dump(path, data); err != nil {
		n.logErr("save_stash", err.Error())
	}
}

// syncerPeerAddrs and syncerPeerIndex give the net ABI read access to
// FrameSyncer's peer ordering without exposing the peers field itself
// outside this package's net files.
func syncerPeerAddrs(f *FrameSyncer) []string {
	addrs := make([]string, len(f.peers))
	for i, p := range f.peers {
		addrs[i] = p.Addr
	}
	return addrs
}

func syncerPeerIndex(f *FrameSyncer, addr string) (uint32, bool) {
	for i, p := range f.peers {
		if p.Addr == addr {
			return uint32(i), true
		}
	}
	return 0, false
}
