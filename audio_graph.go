// audio_graph.go - the per-app audio node graph
//
// Grounded on host/audio.rs: every add_* call attaches a new processor
// node as a child of an existing node id (0 is the implicit root), and
// a node's rendered sample is always the sum of its children's rendered
// samples run through whatever transform that node's kind applies.
// Actual signal-processing fidelity (true stereo panning, PCM decoding
// formats, loop/concat end-of-stream detection) is a deliberate
// simplification: SPEC_FULL.md treats mixing/DSP internals beyond the
// node-id ABI surface as out of scope, so each filter below implements
// the simplest rendering that is still faithful to its name.

package main

import (
	"math"
	"sync"
)

type audioNodeKind uint8

const (
	audioKindSine audioNodeKind = iota
	audioKindSquare
	audioKindSawtooth
	audioKindTriangle
	audioKindNoise
	audioKindEmpty
	audioKindZero
	audioKindFile
	audioKindMix
	audioKindAllForOne
	audioKindGain
	audioKindLoop
	audioKindConcat
	audioKindPan
	audioKindMute
	audioKindPause
	audioKindTrackPosition
	audioKindLowPass
	audioKindHighPass
	audioKindTakeLeft
	audioKindTakeRight
	audioKindSwap
	audioKindClip
)

// audioModulator produces a time-varying value for one node parameter.
type audioModulator interface {
	Value(elapsedSamples uint64) float32
}

// linearMod ramps from Start to End between StartAt and EndAt samples,
// holding End afterward.
type linearMod struct{ Start, End float32; StartAt, EndAt uint32 }

func (m linearMod) Value(elapsed uint64) float32 {
	if m.EndAt <= m.StartAt || elapsed >= uint64(m.EndAt) {
		return m.End
	}
	if elapsed <= uint64(m.StartAt) {
		return m.Start
	}
	t := float32(elapsed-uint64(m.StartAt)) / float32(m.EndAt-m.StartAt)
	return m.Start + (m.End-m.Start)*t
}

// holdMod holds V1 until Time samples have elapsed, then switches to V2.
type holdMod struct{ V1, V2 float32; Time uint32 }

func (m holdMod) Value(elapsed uint64) float32 {
	if elapsed < uint64(m.Time) {
		return m.V1
	}
	return m.V2
}

// sineMod oscillates between Low and High at Freq Hz.
type sineMod struct{ Freq, Low, High float32; sampleRate int }

func (m sineMod) Value(elapsed uint64) float32 {
	t := float64(elapsed) / float64(m.sampleRate)
	s := 0.5 + 0.5*math.Sin(2*math.Pi*float64(m.Freq)*t)
	return m.Low + (m.High-m.Low)*float32(s)
}

// audioNode is one node in the graph. params holds up to 9 per-kind
// parameters (modulate's param index is 0-8, matching validators.go's
// ValidAudioParam); a nil modulators[i] means the param holds its
// static value.
type audioNode struct {
	id       uint32
	kind     audioNodeKind
	parent   uint32
	children []uint32

	params     [9]float32
	modulators [9]audioModulator
	modOrigin  [9]uint64

	phase    float64 // generator phase, cycles [0,1)
	lpState  float32 // one-pole filter memory
	noise    uint32  // xorshift32 state
	pcm      []float32
	pcmPos   int
	concatAt int
}

func (n *audioNode) param(g *AudioGraph, i int) float32 {
	if n.modulators[i] != nil {
		elapsed := g.sampleIdx - n.modOrigin[i]
		return n.modulators[i].Value(elapsed)
	}
	return n.params[i]
}

// AudioGraph owns every node for one running app and implements
// SampleSource by rendering whichever top-level nodes (parent == 0)
// currently exist.
type AudioGraph struct {
	mu         sync.Mutex
	nodes      map[uint32]*audioNode
	nextID     uint32
	sampleRate int
	sampleIdx  uint64
}

// NewAudioGraph returns an empty graph rendering at sampleRate Hz.
func NewAudioGraph(sampleRate int) *AudioGraph {
	return &AudioGraph{nodes: make(map[uint32]*audioNode), sampleRate: sampleRate}
}

// AddNode creates a new node of kind as a child of parentID (0 = root
// level) and returns its id. parentID must either be 0 or an existing
// node id.
func (g *AudioGraph) AddNode(parentID uint32, kind audioNodeKind, params ...float32) (uint32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if parentID != 0 {
		if _, ok := g.nodes[parentID]; !ok {
			return 0, ErrOutOfBounds
		}
	}
	g.nextID++
	n := &audioNode{id: g.nextID, kind: kind, parent: parentID}
	copy(n.params[:], params)
	if kind == audioKindNoise && len(params) > 0 {
		n.noise = uint32(params[0])
	}
	if n.noise == 0 {
		n.noise = 0x2545F491
	}
	g.nodes[n.id] = n
	if parentID != 0 {
		p := g.nodes[parentID]
		p.children = append(p.children, n.id)
	}
	return n.id, nil
}

// GetNode returns the node with id, or an error if it does not exist.
func (g *AudioGraph) GetNode(id uint32) (*audioNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrOutOfBounds
	}
	return n, nil
}

// Modulate installs lfo on node id's param index, which must be 0-8.
func (g *AudioGraph) Modulate(id, param uint32, lfo audioModulator) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrOutOfBounds
	}
	n.modulators[param] = lfo
	n.modOrigin[param] = g.sampleIdx
	return nil
}

// Reset restarts node id's own internal playback state (generator phase,
// PCM position, filter memory) without touching its children.
func (g *AudioGraph) Reset(id uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrOutOfBounds
	}
	g.resetOne(n)
	return nil
}

func (g *AudioGraph) resetOne(n *audioNode) {
	n.phase = 0
	n.lpState = 0
	n.pcmPos = 0
	n.concatAt = 0
	for i := range n.modOrigin {
		n.modOrigin[i] = g.sampleIdx
	}
}

// ResetAll resets node id and every descendant, recursively.
func (g *AudioGraph) ResetAll(id uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrOutOfBounds
	}
	g.resetRecursive(n)
	return nil
}

func (g *AudioGraph) resetRecursive(n *audioNode) {
	g.resetOne(n)
	for _, childID := range n.children {
		if c, ok := g.nodes[childID]; ok {
			g.resetRecursive(c)
		}
	}
}

// Clear detaches and deletes every child of node id (the node itself
// survives, now childless), matching host/audio.rs's clear().
func (g *AudioGraph) Clear(id uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrOutOfBounds
	}
	for _, childID := range n.children {
		g.deleteSubtree(childID)
	}
	n.children = nil
	return nil
}

func (g *AudioGraph) deleteSubtree(id uint32) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, childID := range n.children {
		g.deleteSubtree(childID)
	}
	delete(g.nodes, id)
}

// SetPCM attaches decoded PCM samples to a file node.
func (g *AudioGraph) SetPCM(id uint32, samples []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		n.pcm = samples
	}
}

// ReadSample implements SampleSource: one call renders one sample by
// summing every root-level node (parent == 0) and advances the global
// sample clock used by modulator timing.
func (g *AudioGraph) ReadSample() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sum float32
	for _, n := range g.nodes {
		if n.parent == 0 {
			sum += g.render(n)
		}
	}
	g.sampleIdx++
	return sum
}

func (g *AudioGraph) childrenSum(n *audioNode) float32 {
	var sum float32
	for _, childID := range n.children {
		if c, ok := g.nodes[childID]; ok {
			sum += g.render(c)
		}
	}
	return sum
}

func (g *AudioGraph) render(n *audioNode) float32 {
	switch n.kind {
	case audioKindSine:
		return g.renderGenerator(n, func(ph float64) float32 { return float32(math.Sin(2 * math.Pi * ph)) })
	case audioKindSquare:
		return g.renderGenerator(n, func(ph float64) float32 {
			if ph < 0.5 {
				return 1
			}
			return -1
		})
	case audioKindSawtooth:
		return g.renderGenerator(n, func(ph float64) float32 { return float32(2*ph - 1) })
	case audioKindTriangle:
		return g.renderGenerator(n, func(ph float64) float32 {
			return float32(2*math.Abs(2*ph-1) - 1)
		})
	case audioKindNoise:
		n.noise ^= n.noise << 13
		n.noise ^= n.noise >> 17
		n.noise ^= n.noise << 5
		return float32(n.noise)/float32(1<<31) - 1
	case audioKindEmpty, audioKindZero:
		return 0
	case audioKindFile:
		if n.pcmPos >= len(n.pcm) {
			return 0
		}
		v := n.pcm[n.pcmPos]
		n.pcmPos++
		return v
	case audioKindMix, audioKindAllForOne, audioKindLoop, audioKindTrackPosition:
		return g.childrenSum(n)
	case audioKindGain:
		return g.childrenSum(n) * n.param(g, 0)
	case audioKindConcat:
		return g.renderConcat(n)
	case audioKindPan, audioKindTakeLeft, audioKindTakeRight, audioKindSwap:
		// Mono pipeline: stereo positioning/channel-selection filters are
		// pass-throughs here, see file header.
		return g.childrenSum(n)
	case audioKindMute:
		return 0
	case audioKindPause:
		if n.param(g, 0) >= 0.5 {
			return 0
		}
		return g.childrenSum(n)
	case audioKindLowPass:
		return g.renderOnePole(n, true)
	case audioKindHighPass:
		return g.renderOnePole(n, false)
	case audioKindClip:
		v := g.childrenSum(n)
		lo, hi := n.param(g, 0), n.param(g, 1)
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	default:
		return 0
	}
}

func (g *AudioGraph) renderGenerator(n *audioNode, wave func(phase float64) float32) float32 {
	freq := float64(n.param(g, 0))
	v := wave(n.phase)
	n.phase += freq / float64(g.sampleRate)
	if n.phase >= 1 {
		n.phase -= math.Trunc(n.phase)
	}
	return v
}

func (g *AudioGraph) renderOnePole(n *audioNode, lowPass bool) float32 {
	freq := n.param(g, 0)
	in := g.childrenSum(n)
	alpha := float32(2*math.Pi*float64(freq)/float64(g.sampleRate)) / (1 + float32(2*math.Pi*float64(freq)/float64(g.sampleRate)))
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	n.lpState += alpha * (in - n.lpState)
	if lowPass {
		return n.lpState
	}
	return in - n.lpState
}

// renderConcat plays children one at a time, advancing past any file
// node once it's exhausted; non-file children play once then advance
// immediately on the next call (they have no natural end-of-stream).
func (g *AudioGraph) renderConcat(n *audioNode) float32 {
	for n.concatAt < len(n.children) {
		c, ok := g.nodes[n.children[n.concatAt]]
		if !ok {
			n.concatAt++
			continue
		}
		if c.kind == audioKindFile {
			if c.pcmPos >= len(c.pcm) {
				n.concatAt++
				continue
			}
			return g.render(c)
		}
		v := g.render(c)
		n.concatAt++
		return v
	}
	return 0
}
