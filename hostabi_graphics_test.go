package main

import (
	"math"
	"testing"
)

func newTestGraphicsState(t *testing.T) *State {
	t.Helper()
	dev := NewHeadlessDevice()
	s := NewState(FullID{Author: "alice", App: "snake"}, dev, 1)
	s.BindMemory(newFakeGuestMemory(256))
	return s
}

func TestClearScreenRejectsInvalidColorIndex(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 10, 20, 30)
	before := s.FB.ColorAt(5, 5)
	g.ClearScreen(0) // 0 is reserved, not a valid 1-based index
	if s.FB.ColorAt(5, 5) != before {
		t.Fatalf("an invalid color index must leave the framebuffer untouched")
	}
}

func TestClearScreenValidIndexClears(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 10, 20, 30)
	g.ClearScreen(1)
	want := NewRgb16(10, 20, 30)
	if s.FB.ColorAt(0, 0) != want {
		t.Fatalf("got %+v, want %+v after clear(1)", s.FB.ColorAt(0, 0), want)
	}
}

func TestGetScreenSize(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	w, h := g.GetScreenSize()
	if w != FBWidth || h != FBHeight {
		t.Fatalf("got %dx%d, want %dx%d", w, h, FBWidth, FBHeight)
	}
}

func TestSetColorsRejectsWrongLength(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColors(0, 10) // 10 bytes, not the required 48
	// Must not panic and must leave the palette untouched.
	g.ClearScreen(1)
	if s.FB.ColorAt(0, 0) != defaultPalette[0] {
		t.Fatalf("a rejected set_colors call must not change the palette")
	}
}

func TestSetColorsInstallsFullPalette(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	buf := s.Mem.mem.Bytes()
	for i := 0; i < 48; i++ {
		buf[i] = byte(i)
	}
	g.SetColors(0, 48)
	g.ClearScreen(1)
	want := NewRgb16(0, 1, 2)
	if s.FB.ColorAt(0, 0) != want {
		t.Fatalf("got %+v, want %+v", s.FB.ColorAt(0, 0), want)
	}
}

func TestDrawPointSetsPixel(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 255, 0, 0)
	g.DrawPoint(3, 4, 1)
	want := NewRgb16(255, 0, 0)
	if s.FB.ColorAt(3, 4) != want {
		t.Fatalf("got %+v, want %+v", s.FB.ColorAt(3, 4), want)
	}
}

func TestDrawLineAxisAlignedFastPath(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 0, 255, 0)
	g.DrawLine(0, 0, 5, 0, 1, 1)
	want := NewRgb16(0, 255, 0)
	for x := 0; x <= 5; x++ {
		if s.FB.ColorAt(x, 0) != want {
			t.Fatalf("pixel (%d,0) not drawn by horizontal fast path", x)
		}
	}
}

func TestDrawLineDiagonalBresenham(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 0, 0, 255)
	g.DrawLine(0, 0, 3, 3, 1, 1)
	want := NewRgb16(0, 0, 255)
	if s.FB.ColorAt(0, 0) != want || s.FB.ColorAt(3, 3) != want {
		t.Fatalf("diagonal endpoints were not drawn")
	}
}

func TestDrawRectFilled(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 1, 2, 3)
	g.DrawRect(0, 0, 4, 4, 1, true)
	if s.FB.ColorAt(2, 2) != NewRgb16(1, 2, 3) {
		t.Fatalf("filled rect must paint its interior")
	}
}

func TestDrawRectOutlineLeavesInteriorUntouched(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 9, 9, 9)
	before := s.FB.ColorAt(2, 2)
	g.DrawRect(0, 0, 4, 4, 1, false)
	if s.FB.ColorAt(2, 2) != before {
		t.Fatalf("an outline rect must not paint its interior")
	}
	if s.FB.ColorAt(0, 0) != NewRgb16(9, 9, 9) {
		t.Fatalf("an outline rect must paint its border")
	}
}

func TestDrawRoundedRectFilledPaintsCenterAndCorners(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 1, 2, 3)
	g.DrawRoundedRect(0, 0, 20, 20, 4, 1, true)
	want := NewRgb16(1, 2, 3)
	if s.FB.ColorAt(10, 10) != want {
		t.Fatalf("filled rounded rect must paint its center")
	}
	if s.FB.ColorAt(0, 0) == want {
		t.Fatalf("filled rounded rect must not paint the extreme corner pixel")
	}
}

func TestDrawRoundedRectRejectsInvalidColor(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	before := s.FB.ColorAt(10, 10)
	g.DrawRoundedRect(0, 0, 20, 20, 4, 0, true)
	if s.FB.ColorAt(10, 10) != before {
		t.Fatalf("an invalid color index must leave the framebuffer untouched")
	}
}

func TestDrawEllipseFilledPaintsCenter(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 4, 5, 6)
	g.DrawEllipse(50, 50, 10, 5, 1, true)
	if s.FB.ColorAt(50, 50) != NewRgb16(4, 5, 6) {
		t.Fatalf("filled ellipse must paint its center")
	}
}

func TestDrawEllipseOutlineLeavesCenterUntouched(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 4, 5, 6)
	before := s.FB.ColorAt(50, 50)
	g.DrawEllipse(50, 50, 10, 5, 1, false)
	if s.FB.ColorAt(50, 50) != before {
		t.Fatalf("unfilled ellipse must not paint its interior")
	}
	if s.FB.ColorAt(60, 50) != NewRgb16(4, 5, 6) {
		t.Fatalf("unfilled ellipse must paint its rightmost boundary pixel")
	}
}

func TestDrawTriangleFilledPaintsInterior(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 7, 8, 9)
	g.DrawTriangle(0, 0, 20, 0, 10, 20, 1, true)
	if s.FB.ColorAt(10, 5) != NewRgb16(7, 8, 9) {
		t.Fatalf("filled triangle must paint a point known to be interior")
	}
	if s.FB.ColorAt(0, 19) == (NewRgb16(7, 8, 9)) {
		t.Fatalf("filled triangle must not paint a point known to be outside")
	}
}

func TestDrawTriangleOutlineLeavesInteriorUntouched(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 7, 8, 9)
	before := s.FB.ColorAt(10, 5)
	g.DrawTriangle(0, 0, 20, 0, 10, 20, 1, false)
	if s.FB.ColorAt(10, 5) != before {
		t.Fatalf("unfilled triangle must not paint its interior")
	}
	if s.FB.ColorAt(0, 0) != NewRgb16(7, 8, 9) {
		t.Fatalf("unfilled triangle must paint its vertices")
	}
}

func TestDrawArcPaintsQuarterCircle(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 10, 20, 30)
	g.DrawArc(50, 50, 10, 0, float32(math.Pi/2), 1)
	if s.FB.ColorAt(60, 50) != NewRgb16(10, 20, 30) {
		t.Fatalf("arc must paint its start point")
	}
	if s.FB.ColorAt(50, 60) != NewRgb16(10, 20, 30) {
		t.Fatalf("arc must paint its end point")
	}
	if s.FB.ColorAt(50, 50) == (NewRgb16(10, 20, 30)) {
		t.Fatalf("arc must not paint the center")
	}
}

func TestDrawSectorFilledPaintsCenter(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 11, 22, 33)
	g.DrawSector(50, 50, 10, 0, float32(math.Pi/2), 1, true)
	if s.FB.ColorAt(50, 50) != NewRgb16(11, 22, 33) {
		t.Fatalf("filled sector must paint its center (the wedge apex)")
	}
}

func TestDrawSectorOutlineLeavesFarInteriorUntouched(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 11, 22, 33)
	g.DrawSector(50, 50, 10, 0, float32(math.Pi/2), 1, false)
	if s.FB.ColorAt(55, 55) == (NewRgb16(11, 22, 33)) {
		t.Fatalf("unfilled sector must not paint a point deep in its interior")
	}
}

// buildSpriteBlob returns a minimal packed 4bpp image blob per
// image.go's header layout: 2x1 pixels, identity swap table, no
// transparency, height inferred as 1 row from a single pixel byte.
func buildSpriteBlob(idx0, idx1 byte) []byte {
	header := []byte{
		imageMagic, 4, // magic, bpp
		2, 0, // width = 2
		0xff, // no transparent index
	}
	var swaps [8]byte
	for i := range swaps {
		swaps[i] = byte((2*i)<<4) | byte(2*i+1)
	}
	pixel := (idx1 << 4) | (idx0 & 0xf)
	return append(append(header, swaps[:]...), pixel)
}

func TestDrawImageBlitsPackedSprite(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	img := buildSpriteBlob(1, 2)
	copy(s.Mem.mem.Bytes(), img)
	g.DrawImage(0, uint32(len(img)), 10, 10)
	if s.FB.ColorAt(10, 10) != defaultPalette[1] {
		t.Fatalf("got %+v, want palette index 1 at (10,10)", s.FB.ColorAt(10, 10))
	}
	if s.FB.ColorAt(11, 10) != defaultPalette[2] {
		t.Fatalf("got %+v, want palette index 2 at (11,10)", s.FB.ColorAt(11, 10))
	}
}

func TestDrawImageRejectsMalformedHeader(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	// Must not panic on garbage input.
	g.DrawImage(0, 2, 0, 0)
}

func TestDrawTextRejectsOverlappingBuffers(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 255, 255, 255)
	// text and font given the same pointer: must be rejected, not panic.
	g.DrawText(0, 4, 0, 4, 0, 0, 1)
}

// buildFontStrip returns a 96-glyph-wide, 1px-tall packed 4bpp strip
// (glyph width 1px) good enough to exercise draw_text's glyph lookup
// without caring about visual content.
func buildFontStrip() []byte {
	const glyphW = 1
	width := glyphW * 96
	header := []byte{
		imageMagic, 4,
		byte(width), byte(width >> 8),
		0xff,
	}
	var swaps [8]byte
	for i := range swaps {
		swaps[i] = byte((2*i)<<4) | byte(2*i+1)
	}
	pixelBytes := (width*1*4 + 7) / 8
	pixels := make([]byte, pixelBytes)
	return append(append(header, swaps[:]...), pixels...)
}

func TestDrawTextRendersDisjointBuffers(t *testing.T) {
	s := newTestGraphicsState(t)
	g := NewGraphicsABI(s)
	g.SetColor(1, 255, 255, 255)

	font := buildFontStrip()
	mem := s.Mem.mem.Bytes()
	copy(mem[0:1], "A")
	copy(mem[64:], font)

	g.DrawText(0, 1, 64, uint32(len(font)), 0, 0, 1)
	if s.LastCalled != "draw_text" {
		t.Fatalf("LastCalled = %q, want draw_text", s.LastCalled)
	}
}
