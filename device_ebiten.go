//go:build !headless

// device_ebiten.go - windowed Display+Input2 backend
//
// Grounded on video_backend_ebiten.go: keeps the ebiten window lifecycle
// (vsync-gated Start, resizable window, clipboard-copy glue) and the buffer-mutex-guarded frame swap, retargeted from an
// RGBA-chip framebuffer and byte-stream keyboard emission to this
// spec's packed 4-bpp FrameBuffer.Flush output and InputState polling.

package main

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

// EbitenDisplay is a Display backed by a real OS window. It implements
// ebiten.Game itself so the runtime driver can hand it directly to
// ebiten.RunGame.
type EbitenDisplay struct {
	mu     sync.Mutex
	img    *ebiten.Image
	scale  int
	title  string
	ready  chan struct{}
	opened bool

	input *EbitenInput
}

// NewEbitenDisplay returns an EbitenDisplay sized to FBWidth x FBHeight
// logical pixels, drawn scaled up by scale.
func NewEbitenDisplay(title string, scale int) *EbitenDisplay {
	if scale < 1 {
		scale = 1
	}
	return &EbitenDisplay{
		img:    ebiten.NewImage(FBWidth, FBHeight),
		scale:  scale,
		title:  title,
		ready:  make(chan struct{}, 1),
		opened: true,
		input:  &EbitenInput{},
	}
}

// Run starts the ebiten window and blocks until it's closed. Call this
// from the goroutine the runtime driver dedicates to the display backend
// (see main.go); it does not return until the window closes.
func (d *EbitenDisplay) Run() error {
	ebiten.SetWindowSize(FBWidth*d.scale, FBHeight*d.scale)
	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	return ebiten.RunGame(d)
}

// Flush pushes fb's pixels into the window's backing image if dirty.
func (d *EbitenDisplay) Flush(fb *FrameBuffer) error {
	if !fb.Dirty() {
		return nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, FBWidth, FBHeight))
	fb.Flush(func(i int, right, left Rgb16) {
		x0, y0 := (2*i)%FBWidth, (2*i)/FBWidth
		r, g, b := right.RGB888()
		rgba.Set(x0, y0, color.RGBA{R: r, G: g, B: b, A: 0xff})
		r, g, b = left.RGB888()
		rgba.Set(x0+1, y0, color.RGBA{R: r, G: g, B: b, A: 0xff})
	})
	d.mu.Lock()
	d.img.WritePixels(rgba.Pix)
	d.mu.Unlock()
	return nil
}

// Close requests the window stop; ebiten.RunGame returns once Update
// next reports ebiten.Termination.
func (d *EbitenDisplay) Close() error {
	d.mu.Lock()
	d.opened = false
	d.mu.Unlock()
	return nil
}

// Update implements ebiten.Game: polls input and reports termination on
// window close.
func (d *EbitenDisplay) Update() error {
	select {
	case d.ready <- struct{}{}:
	default:
	}
	d.mu.Lock()
	closed := !d.opened && d.input.everPolled
	d.mu.Unlock()
	if ebiten.IsWindowBeingClosed() || closed {
		return ebiten.Termination
	}
	d.input.poll()
	return nil
}

// Draw implements ebiten.Game: blits the scaled framebuffer image.
func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	img := d.img
	scale := float64(d.scale)
	d.mu.Unlock()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(img, op)
}

// Layout implements ebiten.Game.
func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return FBWidth * d.scale, FBHeight * d.scale
}

// Input returns the Input2 capability fed by this window's keyboard
// polling.
func (d *EbitenDisplay) Input() *EbitenInput { return d.input }

// EbitenInput reports controller state derived from keyboard arrows
// (pad) and Z/X (buttons bits 0/1), polled once per ebiten.Game.Update.
type EbitenInput struct {
	mu         sync.Mutex
	state      InputState
	everPolled bool
}

func (in *EbitenInput) Poll() InputState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

func (in *EbitenInput) poll() {
	var s InputState
	const deflect = int16(1 << 14)
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		s.PadX -= deflect
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		s.PadX += deflect
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		s.PadY -= deflect
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		s.PadY += deflect
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		s.Buttons |= 1 << 0
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		s.Buttons |= 1 << 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.Buttons |= 1 << 2 // menu button
	}
	in.mu.Lock()
	in.state = s
	in.everPolled = true
	in.mu.Unlock()
}

// clipboardDiagnostics copies msg to the OS clipboard, for the error
// scene's "copy diagnostics" action (SPEC_FULL.md's DOMAIN STACK entry
// for golang.design/x/clipboard). Returns false if the clipboard is
// unavailable on this platform.
func clipboardDiagnostics(msg string) bool {
	if clipboard.Init() != nil {
		return false
	}
	clipboard.Write(clipboard.FmtText, []byte(msg))
	return true
}
