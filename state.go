// state.go - per-running-app state, the mutable half of every host ABI call
//
// Grounded on spec.md §3's "State (per running guest)" data model.
// Exactly one State exists per running app; it is created at app start
// and reset for the next app by Reset below, with its FrameBuffer reused
// (cleared) rather than reallocated across the exit/restart.

package main

// State is the runtime-owned half of every host ABI call: the half that
// persists across guest calls within one app's lifetime, as opposed to
// the per-call ptr/len arguments the guest passes in.
type State struct {
	App FullID

	Device Device
	FB     *FrameBuffer
	Mem    *MemAccess

	RNG *GuestRNG

	// LastCalled names the most recently entered host function, for
	// attributing an engine trap to the call that triggered it.
	LastCalled string

	Exit bool // set by the menu's quit item; observed by the main loop

	Menu  *Menu
	Stats *AppStats

	Net *NetHandler

	Audio *AudioGraph

	// NextApp, when non-nil, is the app the sudo launcher ABI asked the
	// driver to switch to once the current update/render cycle ends.
	NextApp *FullID

}

// audioSampleRate is the rate every app's AudioGraph renders at,
// matching the oto context opened in audio_sink.go.
const audioSampleRate = 44100

// NewState creates a fresh per-app State. seed is the value the app's
// guest-visible RNG starts at (0 is remapped to 1 by NewGuestRNG).
func NewState(app FullID, device Device, seed uint32) *State {
	return &State{
		App:    app,
		Device: device,
		FB:     NewFrameBuffer(),
		RNG:    NewGuestRNG(seed),
		Menu:   NewMenu(),
		Stats:  &AppStats{},
		Net:    &NetHandler{},
		Audio:  NewAudioGraph(audioSampleRate),
	}
}

// BindMemory attaches the engine's linear-memory handle once the engine
// has finished instantiating the app. Host ABI calls made before this
// has run see ErrNoMemory.
func (s *State) BindMemory(mem GuestMemory) {
	s.Mem = NewMemAccess(mem)
}

// Reset clears per-app state for reuse across an app switch: the
// framebuffer is cleared to its default palette and blank, the menu is
// closed, and the RNG/stats/net are replaced, but the *FrameBuffer and
// *State pointers themselves are kept alive (spec.md: "reused across
// guest lifetimes").
func (s *State) Reset(app FullID, seed uint32) {
	s.App = app
	*s.FB = *NewFrameBuffer()
	s.RNG = NewGuestRNG(seed)
	s.LastCalled = ""
	s.Exit = false
	s.Menu = NewMenu()
	s.Stats = &AppStats{}
	s.Net = &NetHandler{}
	s.Audio = NewAudioGraph(audioSampleRate)
	s.NextApp = nil
	s.Mem = nil
}
