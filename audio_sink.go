//go:build !headless

// audio_sink.go - real oto/v3 audio output stream
//
// Grounded on audio_backend_oto.go: keeps its oto.Context/Player setup
// and the atomic.Pointer hot-swap so the audio thread never blocks on a
// mutex held by the host-ABI thread, retargeted from a register-level
// SoundChip ring buffer to this spec's audio-graph node id surface.
// Node-graph mixing/DSP internals are an explicit Non-goal (spec.md §1);
// SampleSource is the seam a real mixer would plug into, and the node
// graph built by hostabi_audio.go supplies a silent one so the output
// stream is real and testable even though nothing currently feeds it.

package main

import (
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// SampleSource produces one mono float32 sample per call. The audio
// node graph (hostabi_audio.go) is the production implementation;
// mixing/DSP internals beyond the node-id ABI surface are out of scope.
type SampleSource interface {
	ReadSample() float32
}

type silentSource struct{}

func (silentSource) ReadSample() float32 { return 0 }

// AudioSink owns the live oto output stream. SetSource hot-swaps which
// SampleSource feeds it without blocking the audio callback goroutine.
type AudioSink struct {
	ctx    *oto.Context
	player *oto.Player
	source atomic.Pointer[SampleSource]
}

// NewAudioSink opens an oto context at sampleRate and returns a started
// AudioSink initially feeding silence.
func NewAudioSink(sampleRate int) (*AudioSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	sink := &AudioSink{ctx: ctx}
	var silent SampleSource = silentSource{}
	sink.source.Store(&silent)
	sink.player = ctx.NewPlayer(sink)
	sink.player.Play()
	return sink, nil
}

// SetSource atomically replaces the sample source the output stream
// pulls from, e.g. when the audio graph's root node changes.
func (s *AudioSink) SetSource(src SampleSource) {
	s.source.Store(&src)
}

// Read implements io.Reader for oto.Player: one call per output buffer,
// float32 little-endian mono samples packed 4 bytes apiece.
func (s *AudioSink) Read(p []byte) (int, error) {
	srcPtr := s.source.Load()
	var src SampleSource = silentSource{}
	if srcPtr != nil {
		src = *srcPtr
	}
	n := len(p) / 4
	for i := 0; i < n; i++ {
		v := src.ReadSample()
		bits := math.Float32bits(v)
		p[4*i] = byte(bits)
		p[4*i+1] = byte(bits >> 8)
		p[4*i+2] = byte(bits >> 16)
		p[4*i+3] = byte(bits >> 24)
	}
	return n * 4, nil
}

// Close stops playback and releases the underlying stream.
func (s *AudioSink) Close() error {
	if s.player != nil {
		return s.player.Close()
	}
	return nil
}
