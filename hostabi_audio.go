// hostabi_audio.go - audio sub-ABI: node-graph construction and LFO
// modulation
//
// Grounded on host/audio.rs: every add_* call is a thin wrapper around
// AudioGraph.AddNode with a specific audioNodeKind and parameter list;
// every mod_* call wraps AudioGraph.Modulate with a specific LFO.
// Out-of-range node ids and over-range param indices are logged and
// translated to the 0 sentinel, never a panic.

package main

// AudioABI implements the audio sub-ABI against one running app's State.
type AudioABI struct {
	s  *State
	fs FS
}

// NewAudioABI wires an AudioABI to s, loading add_file's PCM source
// through fs.
func NewAudioABI(s *State, fs FS) *AudioABI {
	return &AudioABI{s: s, fs: fs}
}

func (a *AudioABI) enter(name string) {
	a.s.LastCalled = name
}

func (a *AudioABI) logErr(name, msg string) {
	if a.s.Device != nil {
		a.s.Device.Log().Warn("audio." + name + ": " + msg)
	}
}

func (a *AudioABI) add(name string, parentID uint32, kind audioNodeKind, params ...float32) uint32 {
	a.enter(name)
	id, err := a.s.Audio.AddNode(parentID, kind, params...)
	if err != nil {
		a.logErr(name, err.Error())
		return 0
	}
	return id
}

func (a *AudioABI) AddSine(parentID uint32, freq, phase float32) uint32 {
	return a.add("add_sine", parentID, audioKindSine, freq, phase)
}

func (a *AudioABI) AddSquare(parentID uint32, freq, phase float32) uint32 {
	return a.add("add_square", parentID, audioKindSquare, freq, phase)
}

func (a *AudioABI) AddSawtooth(parentID uint32, freq, phase float32) uint32 {
	return a.add("add_sawtooth", parentID, audioKindSawtooth, freq, phase)
}

func (a *AudioABI) AddTriangle(parentID uint32, freq, phase float32) uint32 {
	return a.add("add_triangle", parentID, audioKindTriangle, freq, phase)
}

func (a *AudioABI) AddNoise(parentID uint32, seed int32) uint32 {
	return a.add("add_noise", parentID, audioKindNoise, float32(seed))
}

func (a *AudioABI) AddEmpty(parentID uint32) uint32 {
	return a.add("add_empty", parentID, audioKindEmpty)
}

func (a *AudioABI) AddZero(parentID uint32) uint32 {
	return a.add("add_zero", parentID, audioKindZero)
}

// AddFile loads name's bytes through fs (ROM-only, matching the
// original reading add_file's source from roms/<author>/<app>/<name>)
// and decodes them as little-endian 16-bit signed PCM.
func (a *AudioABI) AddFile(parentID, namePtr, nameLen uint32) uint32 {
	a.enter("add_file")
	name, err := a.s.Mem.String(namePtr, nameLen)
	if err != nil {
		a.logErr("add_file", err.Error())
		return 0
	}
	if !ValidFileName(name) {
		a.logErr("add_file", "invalid file name")
		return 0
	}
	path := "roms/" + a.s.App.Author + "/" + a.s.App.App + "/" + name
	raw, err := a.fs.Load(path)
	if err != nil {
		a.logErr("add_file", err.Error())
		return 0
	}
	id, gerr := a.s.Audio.AddNode(parentID, audioKindFile)
	if gerr != nil {
		a.logErr("add_file", gerr.Error())
		return 0
	}
	a.s.Audio.SetPCM(id, decodePCM16(raw))
	return id
}

func decodePCM16(raw []byte) []float32 {
	n := len(raw) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		out[i] = float32(v) / 32768
	}
	return out
}

func (a *AudioABI) AddMix(parentID uint32) uint32 {
	return a.add("add_mix", parentID, audioKindMix)
}

func (a *AudioABI) AddAllForOne(parentID uint32) uint32 {
	return a.add("add_all_for_one", parentID, audioKindAllForOne)
}

func (a *AudioABI) AddGain(parentID uint32, level float32) uint32 {
	return a.add("add_gain", parentID, audioKindGain, level)
}

func (a *AudioABI) AddLoop(parentID uint32) uint32 {
	return a.add("add_loop", parentID, audioKindLoop)
}

func (a *AudioABI) AddConcat(parentID uint32) uint32 {
	return a.add("add_concat", parentID, audioKindConcat)
}

func (a *AudioABI) AddPan(parentID uint32, level float32) uint32 {
	return a.add("add_pan", parentID, audioKindPan, level)
}

func (a *AudioABI) AddMute(parentID uint32) uint32 {
	return a.add("add_mute", parentID, audioKindMute)
}

func (a *AudioABI) AddPause(parentID uint32) uint32 {
	return a.add("add_pause", parentID, audioKindPause)
}

func (a *AudioABI) AddTrackPosition(parentID uint32) uint32 {
	return a.add("add_track_position", parentID, audioKindTrackPosition)
}

func (a *AudioABI) AddLowPass(parentID uint32, freq, q float32) uint32 {
	return a.add("add_low_pass", parentID, audioKindLowPass, freq, q)
}

func (a *AudioABI) AddHighPass(parentID uint32, freq, q float32) uint32 {
	return a.add("add_high_pass", parentID, audioKindHighPass, freq, q)
}

func (a *AudioABI) AddTakeLeft(parentID uint32) uint32 {
	return a.add("add_take_left", parentID, audioKindTakeLeft)
}

func (a *AudioABI) AddTakeRight(parentID uint32) uint32 {
	return a.add("add_take_right", parentID, audioKindTakeRight)
}

func (a *AudioABI) AddSwap(parentID uint32) uint32 {
	return a.add("add_swap", parentID, audioKindSwap)
}

func (a *AudioABI) AddClip(parentID uint32, low, high float32) uint32 {
	return a.add("add_clip", parentID, audioKindClip, low, high)
}

func (a *AudioABI) modulate(name string, nodeID, param uint32, lfo audioModulator) {
	a.enter(name)
	if !ValidAudioParam(param) {
		a.logErr(name, "param index out of range")
		return
	}
	if err := a.s.Audio.Modulate(nodeID, param, lfo); err != nil {
		a.logErr(name, err.Error())
	}
}

func (a *AudioABI) ModLinear(nodeID, param uint32, start, end float32, startAt, endAt uint32) {
	a.modulate("mod_linear", nodeID, param, linearMod{Start: start, End: end, StartAt: startAt, EndAt: endAt})
}

func (a *AudioABI) ModHold(nodeID, param uint32, v1, v2 float32, at uint32) {
	a.modulate("mod_hold", nodeID, param, holdMod{V1: v1, V2: v2, Time: at})
}

func (a *AudioABI) ModSine(nodeID, param uint32, freq, low, high float32) {
	a.modulate("mod_sine", nodeID, param, sineMod{Freq: freq, Low: low, High: high, sampleRate: a.s.Audio.sampleRate})
}

func (a *AudioABI) Reset(nodeID uint32) {
	a.enter("reset")
	if err := a.s.Audio.Reset(nodeID); err != nil {
		a.logErr("reset", err.Error())
	}
}

func (a *AudioABI) ResetAll(nodeID uint32) {
	a.enter("reset_all")
	if err := a.s.Audio.ResetAll(nodeID); err != nil {
		a.logErr("reset_all", err.Error())
	}
}

func (a *AudioABI) Clear(nodeID uint32) {
	a.enter("clear")
	if err := a.s.Audio.Clear(nodeID); err != nil {
		a.logErr("clear", err.Error())
	}
}
