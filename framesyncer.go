// framesyncer.go - lock-step frame advance for an active multiplayer session
//
// Grounded on net/frame_syncer.rs. A session only advances past a frame
// once every peer's ring buffer holds that frame's state; until then
// Sync keeps re-requesting it from whichever peers haven't sent it yet.

package main

import "time"

const (
	frameSyncerSyncEvery = time.Millisecond
	frameSyncerMaxPeers  = 8
	frameSyncerMsgSize   = 64
)

// FSPeer is one participant in an active session. Addr == "" marks the
// local device's own entry. Badges/Scores/Stash/FriendID carry the
// AppIntro data captured at Connector.Finalize time so the app can render
// peer progress without another round trip.
type FSPeer struct {
	Addr     string
	Name     string
	States   *RingBuf[FrameState]
	FriendID *uint16
	Badges   []uint16
	Scores   []int16
	Stash    []byte
}

// FrameSyncer drives the lock-step part of a multiplayer session: every
// peer (including the local device) must report its input for a frame
// before the session advances to the next one.
type FrameSyncer struct {
	frame      uint32
	peers      []*FSPeer
	lastSync   time.Time
	net        Net
	clock      Clock
	deviceSeed uint32
	sharedSeed uint32
	app        FullID
}

// Frame returns the syncer's current frame number.
func (f *FrameSyncer) Frame() uint32 { return f.frame }

// App returns the app this session is running.
func (f *FrameSyncer) App() FullID { return f.app }

// DeviceSeed is this device's own true-random seed, contributed during
// the handshake.
func (f *FrameSyncer) DeviceSeed() uint32 { return f.deviceSeed }

// SharedSeed is the XOR of every peer's contributed seed, the value that
// should actually seed the app's deterministic RNG so every device agrees.
func (f *FrameSyncer) SharedSeed() uint32 { return f.sharedSeed }

// Ready reports whether every peer has reported state for the current
// frame, meaning the session can safely advance.
func (f *FrameSyncer) Ready() bool {
	for _, p := range f.peers {
		if _, ok := p.States.Get(f.frame); !ok {
			return false
		}
	}
	return true
}

// Advance moves to the next frame. Call only after Ready reports true.
func (f *FrameSyncer) Advance() { f.frame++ }

// SetLocalState records this device's own input for the current frame, so
// it can be served to other peers requesting it.
func (f *FrameSyncer) SetLocalState(input Input) {
	f.me().States.Insert(f.frame, FrameState{Frame: f.frame, Input: input})
}

// Update drives one tick: re-request any peer's missing state for the
// current frame, and process one incoming message.
func (f *FrameSyncer) Update() error {
	now := f.clock.Now()
	if err := f.sync(now); err != nil {
		return err
	}
	addr, raw, err := f.net.Recv()
	if err != nil {
		return nil
	}
	return f.handleMessage(addr, raw)
}

func (f *FrameSyncer) sync(now time.Time) error {
	if !f.lastSync.IsZero() && now.Sub(f.lastSync) < frameSyncerSyncEvery {
		return nil
	}
	f.lastSync = now
	msg := Message{IsResp: false, Req: Req{Kind: kindReqState, Frame: f.frame}}
	raw, err := EncodeMessage(msg)
	if err != nil {
		return &NetcodeError{Op: "sync", Err: err}
	}
	for _, p := range f.peers {
		if p.Addr == connectorLocalPeerAddr {
			continue
		}
		if _, ok := p.States.Get(f.frame); ok {
			continue
		}
		if err := f.net.Send(p.Addr, raw); err != nil {
			return &NetcodeError{Op: "sync", Err: err}
		}
	}
	return nil
}

func (f *FrameSyncer) handleMessage(addr string, raw []byte) error {
	if f.peer(addr) == nil {
		return &NetcodeError{Op: "handle_message", Err: ErrUnknownPeer}
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		return &NetcodeError{Op: "handle_message", Err: err}
	}
	if msg.IsResp {
		return f.handleResp(addr, msg.Resp)
	}
	return f.handleReq(addr, msg.Req)
}

func (f *FrameSyncer) handleReq(addr string, req Req) error {
	if req.Kind != kindReqState {
		return nil
	}
	state, ok := f.me().States.Get(req.Frame)
	if !ok {
		return nil
	}
	msg := Message{IsResp: true, Resp: Resp{Kind: kindRespState, State: state}}
	raw, err := EncodeMessage(msg)
	if err != nil {
		return &NetcodeError{Op: "handle_req", Err: err}
	}
	return f.net.Send(addr, raw)
}

func (f *FrameSyncer) handleResp(addr string, resp Resp) error {
	if resp.Kind != kindRespState {
		return nil
	}
	if p := f.peer(addr); p != nil {
		p.States.Insert(resp.State.Frame, resp.State)
	}
	return nil
}

func (f *FrameSyncer) me() *FSPeer {
	for _, p := range f.peers {
		if p.Addr == connectorLocalPeerAddr {
			return p
		}
	}
	panic("framesyncer: local device missing from peer list")
}

func (f *FrameSyncer) peer(addr string) *FSPeer {
	for _, p := range f.peers {
		if p.Addr == addr {
			return p
		}
	}
	return nil
}
