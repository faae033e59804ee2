package main

import "testing"

func TestDecodeHelloBypassesCodec(t *testing.T) {
	m, err := DecodeMessage([]byte("HELLO"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IsResp || m.Req.Kind != kindReqHello {
		t.Fatalf("got %+v, want a bare Req{Hello}", m)
	}
}

func TestDecodeRejectsEmptyBuffer(t *testing.T) {
	if _, err := DecodeMessage(nil); err == nil {
		t.Fatalf("expected error decoding an empty buffer")
	}
	if _, err := DecodeMessage([]byte{}); err == nil {
		t.Fatalf("expected error decoding an empty buffer")
	}
}

func TestEncodeDecodeReqState(t *testing.T) {
	m := Message{IsResp: false, Req: Req{Kind: kindReqState, Frame: 42}}
	raw, err := EncodeMessage(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.IsResp || got.Req.Kind != kindReqState || got.Req.Frame != 42 {
		t.Fatalf("got %+v", got)
	}
}

func TestEncodeDecodeRespIntro(t *testing.T) {
	m := Message{IsResp: true, Resp: Resp{
		Kind:  kindRespIntro,
		Intro: IntroWithName("player-one", 7),
	}}
	raw, err := EncodeMessage(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Resp.Intro.NameString() != "player-one" || got.Resp.Intro.Version != 7 {
		t.Fatalf("got %+v", got.Resp.Intro)
	}
}

func TestEncodeDecodeRespState(t *testing.T) {
	m := Message{IsResp: true, Resp: Resp{
		Kind: kindRespState,
		State: FrameState{
			Frame: 99,
			Input: Input{HasPad: true, PadX: -5, PadY: 3, Buttons: 0b101},
		},
	}}
	raw, err := EncodeMessage(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Resp.State != m.Resp.State {
		t.Fatalf("got %+v, want %+v", got.Resp.State, m.Resp.State)
	}
}

func TestEncodeDecodeRespStart(t *testing.T) {
	m := Message{IsResp: true, Resp: Resp{
		Kind: kindRespStart,
		Start: Start{
			ID:     FullID{Author: "some-user", App: "some-app"},
			Badges: []uint16{1, 2, 3},
			Scores: []int16{-1, 0, 1},
			Stash:  []byte{0xDE, 0xAD, 0xBE, 0xEF},
			Seed:   0xCAFEF00D,
		},
	}}
	raw, err := EncodeMessage(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := got.Resp.Start
	if s.ID.String() != "some-user.some-app" {
		t.Fatalf("got id %q", s.ID.String())
	}
	if len(s.Badges) != 3 || s.Badges[2] != 3 {
		t.Fatalf("got badges %v", s.Badges)
	}
	if len(s.Scores) != 3 || s.Scores[0] != -1 {
		t.Fatalf("got scores %v", s.Scores)
	}
	if string(s.Stash) != "\xDE\xAD\xBE\xEF" {
		t.Fatalf("got stash %v", s.Stash)
	}
	if s.Seed != 0xCAFEF00D {
		t.Fatalf("got seed %x", s.Seed)
	}
}
