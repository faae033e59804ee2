// netmsg.go - fixed-size binary wire format for netcode messages

package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// NetcodeError is returned by the Connector and FrameSyncer for anything
// that goes wrong talking to a peer.
type NetcodeError struct {
	Op  string
	Err error
}

func (e *NetcodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("netcode %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("netcode %s", e.Op)
}

func (e *NetcodeError) Unwrap() error { return e.Err }

var (
	ErrEmptyBufferIn  = errors.New("netcode: empty incoming buffer")
	ErrEmptyBufferOut = errors.New("netcode: encode produced an empty buffer")
	ErrUnknownPeer    = errors.New("netcode: message from an address that is not a known peer")
)

// helloBeacon is a bare liveness probe, not a Message at all. It lets a
// peer check reachability without needing a fully-formed handshake state.
var helloBeacon = []byte("HELLO")

// msgKind tags the wire variant of a Message so decode can dispatch
// without a general-purpose self-describing format (there is no
// postcard/msgpack equivalent in the dependency pack; a one-byte
// discriminant plus encoding/binary fixed fields is the idiomatic Go
// stand-in for an enum wire format).
type msgKind byte

const (
	kindReqHello msgKind = iota
	kindReqIntro
	kindReqStart
	kindReqState
	kindRespIntro
	kindRespStart
	kindRespState
)

// Req is a request sent from one peer to another.
type Req struct {
	Kind  msgKind
	Frame uint32 // valid only when Kind == kindReqState
}

// Resp is a reply to a Req.
type Resp struct {
	Kind  msgKind
	Intro Intro
	Start Start
	State FrameState
}

// Intro carries a peer's self-announcement during the handshake.
type Intro struct {
	Name    [16]byte // zero-padded, treated as a C string
	Version uint16
}

// NameString returns Name trimmed at its first NUL byte.
func (i Intro) NameString() string {
	n := bytes.IndexByte(i.Name[:], 0)
	if n < 0 {
		n = len(i.Name)
	}
	return string(i.Name[:n])
}

// IntroWithName builds an Intro from a Go string, truncating to fit.
func IntroWithName(name string, version uint16) Intro {
	var buf [16]byte
	copy(buf[:], name)
	return Intro{Name: buf, Version: version}
}

// FrameState is one peer's per-frame input snapshot.
type FrameState struct {
	Frame uint32
	Input Input
}

// Input is a single frame's controller state.
type Input struct {
	HasPad  bool
	PadX    int16
	PadY    int16
	Buttons uint8
}

// Start carries the data needed to begin a multiplayer session: which app
// to run and each peer's persisted progress so the app can show it before
// the first frame is simulated.
type Start struct {
	ID     FullID
	Badges []uint16
	Scores []int16
	Stash  []byte
	Seed   uint32
}

// Message is either a Req or a Resp, tagged by a leading isResp byte.
type Message struct {
	IsResp bool
	Req    Req
	Resp   Resp
}

// EncodeMessage serializes m with encoding/binary into a fixed-layout
// record. Returns ErrEmptyBufferOut if, pathologically, nothing was
// written (kept for symmetry with the original decode/encode error
// surface; with this fixed-field format it cannot actually happen).
func EncodeMessage(m Message) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, m.IsResp); err != nil {
		return nil, &NetcodeError{Op: "encode", Err: err}
	}
	if !m.IsResp {
		binary.Write(buf, binary.LittleEndian, m.Req.Kind)
		binary.Write(buf, binary.LittleEndian, m.Req.Frame)
	} else {
		binary.Write(buf, binary.LittleEndian, m.Resp.Kind)
		switch m.Resp.Kind {
		case kindRespIntro:
			binary.Write(buf, binary.LittleEndian, m.Resp.Intro.Name)
			binary.Write(buf, binary.LittleEndian, m.Resp.Intro.Version)
		case kindRespState:
			binary.Write(buf, binary.LittleEndian, m.Resp.State.Frame)
			binary.Write(buf, binary.LittleEndian, m.Resp.State.Input.HasPad)
			binary.Write(buf, binary.LittleEndian, m.Resp.State.Input.PadX)
			binary.Write(buf, binary.LittleEndian, m.Resp.State.Input.PadY)
			binary.Write(buf, binary.LittleEndian, m.Resp.State.Input.Buttons)
		case kindRespStart:
			encodeStart(buf, m.Resp.Start)
		}
	}
	out := buf.Bytes()
	if len(out) == 0 {
		return nil, &NetcodeError{Op: "encode", Err: ErrEmptyBufferOut}
	}
	return out, nil
}

func encodeStart(buf *bytes.Buffer, s Start) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s.ID.Author)))
	buf.WriteString(s.ID.Author)
	binary.Write(buf, binary.LittleEndian, uint16(len(s.ID.App)))
	buf.WriteString(s.ID.App)
	binary.Write(buf, binary.LittleEndian, uint32(len(s.Badges)))
	binary.Write(buf, binary.LittleEndian, s.Badges)
	binary.Write(buf, binary.LittleEndian, uint32(len(s.Scores)))
	binary.Write(buf, binary.LittleEndian, s.Scores)
	binary.Write(buf, binary.LittleEndian, uint32(len(s.Stash)))
	buf.Write(s.Stash)
	binary.Write(buf, binary.LittleEndian, s.Seed)
}

func decodeStart(r *bytes.Reader) (Start, error) {
	var s Start
	var l uint16
	if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
		return s, err
	}
	author := make([]byte, l)
	if _, err := r.Read(author); err != nil {
		return s, err
	}
	if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
		return s, err
	}
	app := make([]byte, l)
	if _, err := r.Read(app); err != nil {
		return s, err
	}
	s.ID = FullID{Author: string(author), App: string(app)}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return s, err
	}
	s.Badges = make([]uint16, n)
	if err := binary.Read(r, binary.LittleEndian, s.Badges); err != nil {
		return s, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return s, err
	}
	s.Scores = make([]int16, n)
	if err := binary.Read(r, binary.LittleEndian, s.Scores); err != nil {
		return s, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return s, err
	}
	s.Stash = make([]byte, n)
	if _, err := r.Read(s.Stash); err != nil {
		return s, err
	}
	if err := binary.Read(r, binary.LittleEndian, &s.Seed); err != nil {
		return s, err
	}
	return s, nil
}

// DecodeMessage parses raw into a Message. raw == "HELLO" is special-cased
// to a bare Req{Kind: kindReqHello} without going through the binary
// layout at all, matching the wire-level liveness-probe bypass.
func DecodeMessage(raw []byte) (Message, error) {
	if len(raw) == 0 {
		return Message{}, &NetcodeError{Op: "decode", Err: ErrEmptyBufferIn}
	}
	if bytes.Equal(raw, helloBeacon) {
		return Message{Req: Req{Kind: kindReqHello}}, nil
	}

	r := bytes.NewReader(raw)
	var isResp bool
	if err := binary.Read(r, binary.LittleEndian, &isResp); err != nil {
		return Message{}, &NetcodeError{Op: "decode", Err: err}
	}
	m := Message{IsResp: isResp}
	if !isResp {
		if err := binary.Read(r, binary.LittleEndian, &m.Req.Kind); err != nil {
			return Message{}, &NetcodeError{Op: "decode", Err: err}
		}
		if err := binary.Read(r, binary.LittleEndian, &m.Req.Frame); err != nil {
			return Message{}, &NetcodeError{Op: "decode", Err: err}
		}
		return m, nil
	}

	if err := binary.Read(r, binary.LittleEndian, &m.Resp.Kind); err != nil {
		return Message{}, &NetcodeError{Op: "decode", Err: err}
	}
	var err error
	switch m.Resp.Kind {
	case kindRespIntro:
		err = binary.Read(r, binary.LittleEndian, &m.Resp.Intro.Name)
		if err == nil {
			err = binary.Read(r, binary.LittleEndian, &m.Resp.Intro.Version)
		}
	case kindRespState:
		err = binary.Read(r, binary.LittleEndian, &m.Resp.State.Frame)
		if err == nil {
			err = binary.Read(r, binary.LittleEndian, &m.Resp.State.Input.HasPad)
		}
		if err == nil {
			err = binary.Read(r, binary.LittleEndian, &m.Resp.State.Input.PadX)
		}
		if err == nil {
			err = binary.Read(r, binary.LittleEndian, &m.Resp.State.Input.PadY)
		}
		if err == nil {
			err = binary.Read(r, binary.LittleEndian, &m.Resp.State.Input.Buttons)
		}
	case kindRespStart:
		m.Resp.Start, err = decodeStart(r)
	}
	if err != nil {
		return Message{}, &NetcodeError{Op: "decode", Err: err}
	}
	return m, nil
}
