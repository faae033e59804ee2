// connector.go - app-selection handshake preceding a multiplayer session
//
// Grounded on net/connection.rs: devices broadcast periodic sync/ready
// messages until everyone has agreed on an app to launch, then Finalize
// hands off to a FrameSyncer for the actual lock-step session.

package main

import (
	"time"
)

const (
	connectorSyncEvery     = 100 * time.Millisecond
	connectorReadyEvery    = 100 * time.Millisecond
	connectorStartTimeout  = 10 * time.Second
	connectorMaxPeers      = 8
	connectorMsgSize       = 64
	connectorLocalPeerAddr = "" // empty addr marks the local device's own Peer
)

// ConnectionStatus reports where a Connector is in the handshake.
type ConnectionStatus int

const (
	ConnectionWaiting ConnectionStatus = iota
	ConnectionReady
	ConnectionLaunching
	ConnectionTimeout
)

// AppIntro is a peer's self-reported progress, carried along so the
// launched app can show it immediately rather than waiting for a network
// round trip.
type AppIntro struct {
	Badges []uint16
	Scores []int16
	Stash  []byte
	Seed   uint32
}

// ConnPeer is one device participating in the handshake. Addr == "" marks
// the local device's own entry.
type ConnPeer struct {
	Addr  string
	Name  string
	Intro *AppIntro
}

func (p *ConnPeer) ready() bool { return p.Intro != nil }

// Connector runs the app-selection handshake. Once every peer agrees on
// an app, Finalize converts it into a FrameSyncer.
type Connector struct {
	app       *FullID
	seed      *uint32
	peers     []*ConnPeer
	net       Net
	lastSync  time.Time
	lastReady time.Time
	startedAt time.Time
	clock     Clock
	fs        FS
	rng       RNG
	log       Log
}

// NewConnector starts a Connector representing only the local device; use
// AddPeer to register remote participants as they're discovered.
func NewConnector(net Net, clock Clock, fs FS, rng RNG, log Log, localName string) *Connector {
	return &Connector{
		peers: []*ConnPeer{{Addr: connectorLocalPeerAddr, Name: localName}},
		net:   net,
		clock: clock,
		fs:    fs,
		rng:   rng,
		log:   log,
	}
}

// AddPeer registers a remote device discovered before the handshake
// began.
func (c *Connector) AddPeer(addr, name string) {
	if len(c.peers) >= connectorMaxPeers {
		return
	}
	c.peers = append(c.peers, &ConnPeer{Addr: addr, Name: name})
}

// Update drives one tick of the handshake: send periodic sync/ready
// broadcasts, drain a bounded number of incoming messages, and report the
// current status.
func (c *Connector) Update() ConnectionStatus {
	now := c.clock.Now()
	if !c.startedAt.IsZero() && now.Sub(c.startedAt) > connectorStartTimeout {
		c.startedAt = time.Time{}
		return ConnectionTimeout
	}

	if err := c.sync(now); err != nil && c.log != nil {
		c.log.Warn("connector sync failed", "err", err)
	}
	if err := c.sendReady(now); err != nil && c.log != nil {
		c.log.Warn("connector send_ready failed", "err", err)
	}
	for i := 0; i < 4; i++ {
		addr, raw, err := c.net.Recv()
		if err != nil {
			break
		}
		if err := c.handleMessage(addr, raw); err != nil && c.log != nil {
			c.log.Warn("connector handle_message failed", "err", err)
		}
	}

	allReady := true
	for _, p := range c.peers {
		if !p.ready() {
			allReady = false
			break
		}
	}
	if allReady {
		return ConnectionLaunching
	}
	if c.app != nil {
		return ConnectionReady
	}
	return ConnectionWaiting
}

// SetApp picks the app to launch. A no-op if an app was already picked:
// the first choice wins, matching the original's "cannot pick a new one"
// behavior.
func (c *Connector) SetApp(app FullID) error {
	if c.app != nil {
		return nil
	}
	seed := c.getSeed()
	intro, err := makeIntro(c.fs, app, seed)
	if err != nil {
		return &NetcodeError{Op: "set_app", Err: err}
	}
	resp := Message{IsResp: true, Resp: Resp{Kind: kindRespStart, Start: Start{
		ID: app, Badges: intro.Badges, Scores: intro.Scores, Stash: intro.Stash, Seed: intro.Seed,
	}}}
	if err := c.broadcast(resp); err != nil {
		return err
	}
	c.app = &app
	c.startedAt = c.clock.Now()
	c.me().Intro = intro
	return nil
}

// getSeed lazily fetches a true-random seed on first use and caches it so
// every broadcast intro carries the same value.
func (c *Connector) getSeed() uint32 {
	if c.seed != nil {
		return *c.seed
	}
	s := c.rng.Uint32()
	c.seed = &s
	return s
}

// Finalize converts a fully-ready Connector into a FrameSyncer. Call this
// only after Update has returned ConnectionLaunching.
func (c *Connector) Finalize() *FrameSyncer {
	peers := make([]*FSPeer, 0, len(c.peers))
	var sharedSeed uint32
	for _, p := range c.peers {
		var friendID *uint16
		if p.Addr != connectorLocalPeerAddr {
			friendID = getFriendID(c.fs, p.Name)
		}
		peers = append(peers, &FSPeer{
			Addr:     p.Addr,
			Name:     p.Name,
			States:   NewRingBuf[FrameState](),
			FriendID: friendID,
			Badges:   p.Intro.Badges,
			Scores:   p.Intro.Scores,
			Stash:    p.Intro.Stash,
		})
		sharedSeed ^= p.Intro.Seed
	}
	deviceSeed := uint32(0)
	if c.seed != nil {
		deviceSeed = *c.seed
	}
	return &FrameSyncer{
		peers:      peers,
		net:        c.net,
		clock:      c.clock,
		deviceSeed: deviceSeed,
		sharedSeed: sharedSeed,
		app:        *c.app,
	}
}

func (c *Connector) sync(now time.Time) error {
	if !c.lastSync.IsZero() && now.Sub(c.lastSync) < connectorSyncEvery {
		return nil
	}
	c.lastSync = now
	return c.broadcast(Message{IsResp: false, Req: Req{Kind: kindReqStart}})
}

func (c *Connector) sendReady(now time.Time) error {
	if c.app == nil {
		return nil
	}
	if !c.lastReady.IsZero() && now.Sub(c.lastReady) < connectorReadyEvery {
		return nil
	}
	c.lastReady = now
	intro := c.me().Intro
	resp := Message{IsResp: true, Resp: Resp{Kind: kindRespStart, Start: Start{
		ID: *c.app, Badges: intro.Badges, Scores: intro.Scores, Stash: intro.Stash, Seed: intro.Seed,
	}}}
	return c.broadcast(resp)
}

func (c *Connector) me() *ConnPeer {
	for _, p := range c.peers {
		if p.Addr == connectorLocalPeerAddr {
			return p
		}
	}
	panic("connector: local device missing from peer list")
}

func (c *Connector) peer(addr string) *ConnPeer {
	for _, p := range c.peers {
		if p.Addr == addr {
			return p
		}
	}
	return nil
}

func (c *Connector) handleMessage(addr string, raw []byte) error {
	if c.peer(addr) == nil {
		return &NetcodeError{Op: "handle_message", Err: ErrUnknownPeer}
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		return &NetcodeError{Op: "handle_message", Err: err}
	}
	if msg.IsResp {
		return c.handleResp(addr, msg.Resp)
	}
	return c.handleReq(addr, msg.Req)
}

func (c *Connector) handleReq(addr string, req Req) error {
	switch req.Kind {
	case kindReqStart:
		return c.handleStartReq(addr)
	}
	return nil
}

// handleStartReq answers another device's "are you ready to start" check.
func (c *Connector) handleStartReq(addr string) error {
	if c.app == nil {
		return nil
	}
	me := c.me()
	if me.Intro == nil {
		return nil
	}
	resp := Message{IsResp: true, Resp: Resp{Kind: kindRespStart, Start: Start{
		ID: *c.app, Badges: me.Intro.Badges, Scores: me.Intro.Scores,
		Stash: me.Intro.Stash, Seed: me.Intro.Seed,
	}}}
	raw, err := EncodeMessage(resp)
	if err != nil {
		return &NetcodeError{Op: "handle_start_req", Err: err}
	}
	return c.net.Send(addr, raw)
}

func (c *Connector) handleResp(addr string, resp Resp) error {
	if resp.Kind == kindRespStart {
		return c.handleStartResp(addr, resp.Start)
	}
	return nil
}

// handleStartResp arrives when another device announces the app it wants
// to (or has agreed to) launch, along with that device's app-specific
// progress.
func (c *Connector) handleStartResp(addr string, start Start) error {
	if err := c.SetApp(start.ID); err != nil {
		return err
	}
	if p := c.peer(addr); p != nil {
		p.Intro = &AppIntro{Badges: start.Badges, Scores: start.Scores, Stash: start.Stash, Seed: start.Seed}
	}
	return nil
}

func (c *Connector) broadcast(msg Message) error {
	raw, err := EncodeMessage(msg)
	if err != nil {
		return &NetcodeError{Op: "broadcast", Err: err}
	}
	for _, p := range c.peers {
		if p.Addr == connectorLocalPeerAddr {
			continue
		}
		if err := c.net.Send(p.Addr, raw); err != nil {
			return &NetcodeError{Op: "broadcast", Err: err}
		}
	}
	return nil
}

// getFriendID assigns (creating on first sight, else looking up) a small
// stable numeric id for a named peer, persisted under sys/friends as a
// flat list of length-prefixed names. Returns nil if the name is too long
// to have ever been recorded (>16 bytes) or if saving a newly assigned id
// fails; a list that cannot be loaded is treated as empty.
func getFriendID(fs FS, deviceName string) *uint16 {
	if len(deviceName) > 16 {
		return nil
	}
	raw, err := fs.Load("sys/friends")
	if err != nil {
		raw = nil
	}
	i := uint16(1)
	pos := 0
	for pos < len(raw) {
		size := int(raw[pos])
		pos++
		if size == 0 {
			continue
		}
		if pos+size > len(raw) {
			break
		}
		if string(raw[pos:pos+size]) == deviceName {
			return &i
		}
		pos += size
		i++
	}
	raw = append(raw, byte(len(deviceName)))
	raw = append(raw, []byte(deviceName)...)
	if err := fs.Dump("sys/friends", raw); err != nil {
		return nil
	}
	return &i
}

// makeIntro builds the AppIntro to broadcast when picking app as the
// session's game: its persisted stash verbatim, and badge/score progress
// summarized from its stats. A missing stash or stats file is not an
// error - a first-time launch simply has none yet.
func makeIntro(fs FS, app FullID, seed uint32) (*AppIntro, error) {
	base := "data/" + app.Author + "/" + app.App + "/"

	var stash []byte
	if raw, err := fs.Load(base + "stash"); err == nil {
		stash = raw
	}

	snap, err := LoadStatsSnapshot(fs, app)
	if err != nil {
		return &AppIntro{Stash: stash, Seed: seed}, nil
	}
	badges := make([]uint16, 0, len(snap.Badges))
	for _, b := range snap.Badges {
		badges = append(badges, b.Done)
	}
	scores := make([]int16, 0, len(snap.Scores))
	for _, s := range snap.Scores {
		scores = append(scores, s)
	}
	return &AppIntro{Badges: badges, Scores: scores, Stash: stash, Seed: seed}, nil
}
