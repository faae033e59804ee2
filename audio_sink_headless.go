//go:build headless

// audio_sink_headless.go - no-op AudioSink for headless builds/tests
//
// Mirrors the teacher's sibling-headless-file convention
// (audio_backend_headless.go's build-tag pairing with audio_backend_oto.go).

package main

// AudioSink is a no-op stand-in with the same surface as the real
// oto-backed one, so code that owns an *AudioSink compiles and runs the
// same way under the headless build tag.
type AudioSink struct{}

func NewAudioSink(sampleRate int) (*AudioSink, error) {
	return &AudioSink{}, nil
}

func (s *AudioSink) SetSource(src SampleSource) {}

func (s *AudioSink) Close() error { return nil }

// SampleSource is redeclared here (not in audio_sink.go) so headless
// builds don't need to import the real file just for the interface
// type; hostabi_audio.go depends on this name existing under both tags.
type SampleSource interface {
	ReadSample() float32
}
