// hostabi_graphics.go - graphics sub-ABI: clear/draw/image calls
//
// Grounded on host/graphics.rs: every entry point follows the canonical
// host-function body from spec.md §4.3 - tag last_called, require bound
// memory, bounds-check ptr/len, domain-validate, perform the side
// effect, log+translate any error - and never returns a Go error across
// the boundary: numeric sentinel 0 on failure, void is simply a no-op.

package main

import "math"

// GraphicsABI implements the graphics sub-ABI against one running app's
// State.
type GraphicsABI struct {
	s *State
}

// NewGraphicsABI wires a GraphicsABI to s.
func NewGraphicsABI(s *State) *GraphicsABI { return &GraphicsABI{s: s} }

func (g *GraphicsABI) enter(name string) {
	g.s.LastCalled = name
}

func (g *GraphicsABI) logErr(name, msg string) {
	if g.s.Device != nil {
		g.s.Device.Log().Warn("graphics." + name + ": " + msg)
	}
}

func (g *GraphicsABI) logErrValue(name string, err error) {
	if g.s.Device != nil {
		g.s.Device.Log().Warn("graphics."+name, "err", err)
	}
}

// ClearScreen is clear(color): color is a 1-based palette index, same
// numbering as set_color/draw_point (0 is reserved as "no paint").
func (g *GraphicsABI) ClearScreen(color int32) {
	g.enter("clear")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("clear", "invalid color index")
		return
	}
	g.s.FB.Clear(byte(idx - 1))
}

// GetScreenSize returns the framebuffer's fixed logical dimensions.
func (g *GraphicsABI) GetScreenSize() (uint32, uint32) {
	g.enter("get_screen_size")
	return FBWidth, FBHeight
}

// SetColor installs one palette entry (1-based index) from 8-bit RGB.
func (g *GraphicsABI) SetColor(i, r, gc, b uint32) {
	g.enter("set_color")
	if !ValidColorIndex(i) {
		g.logErr("set_color", "invalid color index")
		return
	}
	g.s.FB.SetPaletteEntry(int(i-1), NewRgb16(byte(r), byte(gc), byte(b)))
}

// SetColors replaces the whole 16-entry palette from a guest buffer of
// 16 packed {r,g,b} byte triples (48 bytes).
func (g *GraphicsABI) SetColors(ptr, length uint32) {
	g.enter("set_colors")
	data, err := g.s.Mem.Slice(ptr, length)
	if err != nil {
		g.logErrValue("set_colors", err)
		return
	}
	if len(data) != 48 {
		g.logErr("set_colors", "expected 48 bytes")
		return
	}
	var pal [16]Rgb16
	for i := 0; i < 16; i++ {
		pal[i] = NewRgb16(data[3*i], data[3*i+1], data[3*i+2])
	}
	g.s.FB.SetPalette(pal)
}

// DrawPoint sets one pixel, clipped to screen bounds by FrameBuffer
// itself.
func (g *GraphicsABI) DrawPoint(x, y, color int32) {
	g.enter("draw_point")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_point", "invalid color index")
		return
	}
	g.s.FB.SetPixel(int(x), int(y), byte(idx-1))
	g.s.FB.MarkDirty()
}

// DrawLine draws an axis-aligned-or-arbitrary line. Only
// horizontal/vertical lines use the framebuffer's fast fill path
// (DrawHLine/DrawVLine) and honor the width w; an arbitrary diagonal uses
// Bresenham's algorithm stepping SetPixel and is always one pixel wide.
func (g *GraphicsABI) DrawLine(x1, y1, x2, y2, color int32, w uint32) {
	g.enter("draw_line")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_line", "invalid color index")
		return
	}
	c := byte(idx - 1)
	width := int(w)
	if width < 1 {
		width = 1
	}
	switch {
	case y1 == y2:
		g.s.FB.DrawHLine(int(x1), int(x2), int(y1), width, c)
	case x1 == x2:
		g.s.FB.DrawVLine(int(x1), int(y1), int(y2), width, c)
	default:
		bresenham(int(x1), int(y1), int(x2), int(y2), func(px, py int) {
			g.s.FB.SetPixel(px, py, c)
		})
		g.s.FB.MarkDirty()
	}
}

// bresenham walks the integer line from (x0,y0) to (x1,y1) inclusive,
// calling plot for every point on it.
func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	dy := -abs(y1 - y0)
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DrawRect fills or outlines a rectangle.
func (g *GraphicsABI) DrawRect(x, y, w, h, color int32, filled bool) {
	g.enter("draw_rect")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_rect", "invalid color index")
		return
	}
	c := byte(idx - 1)
	x0, y0, x1, y1 := int(x), int(y), int(x+w), int(y+h)
	if filled {
		g.s.FB.FillRect(x0, y0, x1, y1, c)
		return
	}
	g.s.FB.DrawHLine(x0, x1-1, y0, 1, c)
	g.s.FB.DrawHLine(x0, x1-1, y1-1, 1, c)
	g.s.FB.DrawVLine(x0, y0, y1-1, 1, c)
	g.s.FB.DrawVLine(x1-1, y0, y1-1, 1, c)
}

// DrawRoundedRect fills or outlines a rectangle whose four corners are
// rounded to cornerRadius, clamped to half the shorter side. Grounded on
// host/graphics.rs's draw_rounded_rect (RoundedRectangle::with_equal_corners),
// simplified to this ABI's single-color/filled-bool convention already
// established by DrawRect/DrawCircle rather than the original's separate
// fill_color/stroke_color/stroke_width triple.
func (g *GraphicsABI) DrawRoundedRect(x, y, w, h, cornerRadius, color int32, filled bool) {
	g.enter("draw_rounded_rect")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_rounded_rect", "invalid color index")
		return
	}
	c := byte(idx - 1)
	x0, y0, x1, y1 := int(x), int(y), int(x+w), int(y+h)
	r := int(cornerRadius)
	if r < 0 {
		r = 0
	}
	if half := min(int(w), int(h)) / 2; r > half {
		r = half
	}
	if filled {
		if x1-x0 > 2*r {
			g.s.FB.FillRect(x0+r, y0, x1-r, y1, c)
		}
		if y1-y0-2*r > 0 && r > 0 {
			g.s.FB.FillRect(x0, y0+r, x0+r, y1-r, c)
			g.s.FB.FillRect(x1-r, y0+r, x1, y1-r, c)
		}
		fillQuarterDisc(g.s.FB, x0+r, y0+r, r, -1, -1, c)
		fillQuarterDisc(g.s.FB, x1-r-1, y0+r, r, 1, -1, c)
		fillQuarterDisc(g.s.FB, x0+r, y1-r-1, r, -1, 1, c)
		fillQuarterDisc(g.s.FB, x1-r-1, y1-r-1, r, 1, 1, c)
	} else {
		g.s.FB.DrawHLine(x0+r, x1-r-1, y0, 1, c)
		g.s.FB.DrawHLine(x0+r, x1-r-1, y1-1, 1, c)
		g.s.FB.DrawVLine(x0, y0+r, y1-r-1, 1, c)
		g.s.FB.DrawVLine(x1-1, y0+r, y1-r-1, 1, c)
		strokeQuarterArc(g.s.FB, x0+r, y0+r, r, -1, -1, c)
		strokeQuarterArc(g.s.FB, x1-r-1, y0+r, r, 1, -1, c)
		strokeQuarterArc(g.s.FB, x0+r, y1-r-1, r, -1, 1, c)
		strokeQuarterArc(g.s.FB, x1-r-1, y1-r-1, r, 1, 1, c)
	}
	g.s.FB.MarkDirty()
}

// fillQuarterDisc paints the quadrant of the disc of radius r centered at
// (cx,cy) selected by sx,sy (each +-1), used to round a filled rect's
// corners.
func fillQuarterDisc(fb *FrameBuffer, cx, cy, r int, sx, sy int, color byte) {
	for dy := 0; dy <= r; dy++ {
		for dx := 0; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				fb.SetPixel(cx+sx*dx, cy+sy*dy, color)
			}
		}
	}
}

// strokeQuarterArc paints the boundary of the quadrant selected by sx,sy
// by sampling angles finely enough that no pixel-sized gap appears.
func strokeQuarterArc(fb *FrameBuffer, cx, cy, r int, sx, sy int, color byte) {
	if r <= 0 {
		fb.SetPixel(cx, cy, color)
		return
	}
	steps := r * 4
	for i := 0; i <= steps; i++ {
		theta := float64(i) / float64(steps) * (math.Pi / 2)
		dx := int(math.Round(float64(r) * math.Cos(theta)))
		dy := int(math.Round(float64(r) * math.Sin(theta)))
		fb.SetPixel(cx+sx*dx, cy+sy*dy, color)
	}
}

// DrawCircle draws (or fills) a circle of given radius centered at
// (cx,cy) via the midpoint circle algorithm.
func (g *GraphicsABI) DrawCircle(cx, cy, radius, color int32, filled bool) {
	g.enter("draw_circle")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_circle", "invalid color index")
		return
	}
	c := byte(idx - 1)
	r := int(radius)
	x, y, d := r, 0, 1-r
	plot := func(px, py int) { g.s.FB.SetPixel(int(cx)+px, int(cy)+py, c) }
	fillSpan := func(y0 int, x0, x1 int) { g.s.FB.DrawHLine(int(cx)+x0, int(cx)+x1, int(cy)+y0, 1, c) }
	for y <= x {
		if filled {
			fillSpan(y, -x, x)
			fillSpan(-y, -x, x)
			fillSpan(x, -y, y)
			fillSpan(-x, -y, y)
		} else {
			plot(x, y)
			plot(-x, y)
			plot(x, -y)
			plot(-x, -y)
			plot(y, x)
			plot(-y, x)
			plot(y, -x)
			plot(-y, -x)
		}
		y++
		if d <= 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
	g.s.FB.MarkDirty()
}

// DrawEllipse draws (or fills) an axis-aligned ellipse centered at
// (cx,cy) with horizontal/vertical radii rx,ry, scanning one row per
// integer y and deriving the row's x-bound from the ellipse equation -
// grounded on host/graphics.rs's draw_ellipse, adapted to this ABI's
// center+radius convention (matching DrawCircle rather than the
// original's top-left+size).
func (g *GraphicsABI) DrawEllipse(cx, cy, rx, ry, color int32, filled bool) {
	g.enter("draw_ellipse")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_ellipse", "invalid color index")
		return
	}
	c := byte(idx - 1)
	a, b := int(rx), int(ry)
	if a <= 0 || b <= 0 {
		return
	}
	for dy := -b; dy <= b; dy++ {
		t := 1 - float64(dy*dy)/float64(b*b)
		if t < 0 {
			t = 0
		}
		dx := int(math.Round(float64(a) * math.Sqrt(t)))
		if filled {
			g.s.FB.DrawHLine(int(cx)-dx, int(cx)+dx, int(cy)+dy, 1, c)
		} else {
			g.s.FB.SetPixel(int(cx)-dx, int(cy)+dy, c)
			g.s.FB.SetPixel(int(cx)+dx, int(cy)+dy, c)
		}
	}
	g.s.FB.MarkDirty()
}

// DrawTriangle draws (or fills) the triangle with the given three
// vertices. The outline is three Bresenham edges; the fill is an
// edge-function scanline rasterizer over the vertices' bounding box,
// inclusive of either winding order.
func (g *GraphicsABI) DrawTriangle(x1, y1, x2, y2, x3, y3, color int32, filled bool) {
	g.enter("draw_triangle")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_triangle", "invalid color index")
		return
	}
	c := byte(idx - 1)
	if filled {
		fillTriangle(g.s.FB, int(x1), int(y1), int(x2), int(y2), int(x3), int(y3), c)
	} else {
		plot := func(px, py int) { g.s.FB.SetPixel(px, py, c) }
		bresenham(int(x1), int(y1), int(x2), int(y2), plot)
		bresenham(int(x2), int(y2), int(x3), int(y3), plot)
		bresenham(int(x3), int(y3), int(x1), int(y1), plot)
	}
	g.s.FB.MarkDirty()
}

// fillTriangle rasterizes the filled triangle (x1,y1)-(x2,y2)-(x3,y3) by
// testing every point of its bounding box against the triangle's three
// edge functions, accepting either winding order.
func fillTriangle(fb *FrameBuffer, x1, y1, x2, y2, x3, y3 int, color byte) {
	minX, maxX := min(x1, x2, x3), max(x1, x2, x3)
	minY, maxY := min(y1, y2, y3), max(y1, y2, y3)
	edge := func(ax, ay, bx, by, px, py int) int {
		return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edge(x2, y2, x3, y3, x, y)
			w1 := edge(x3, y3, x1, y1, x, y)
			w2 := edge(x1, y1, x2, y2, x, y)
			if (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0) {
				fb.SetPixel(x, y, color)
			}
		}
	}
}

// arcPoint returns the point at the given radius and angle (radians,
// standard math convention) around center (cx,cy).
func arcPoint(cx, cy, r int, theta float64) (int, int) {
	return cx + int(math.Round(float64(r)*math.Cos(theta))), cy + int(math.Round(float64(r)*math.Sin(theta)))
}

// DrawArc draws a one-pixel-wide unfilled arc of the given radius,
// starting at startAngle and sweeping sweepAngle radians (both in
// math.Cos/Sin's standard convention) - grounded on host/graphics.rs's
// draw_arc (Arc::new with Angle::from_radians), simplified to an
// always-outline shape since this spec's framebuffer has no stroke-width
// concept beyond DrawLine's integer thickness.
func (g *GraphicsABI) DrawArc(cx, cy, radius int32, startAngle, sweepAngle float32, color int32) {
	g.enter("draw_arc")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_arc", "invalid color index")
		return
	}
	c := byte(idx - 1)
	r := int(radius)
	if r <= 0 {
		return
	}
	steps := max(r*4, 8)
	for i := 0; i <= steps; i++ {
		theta := float64(startAngle) + float64(sweepAngle)*float64(i)/float64(steps)
		px, py := arcPoint(int(cx), int(cy), r, theta)
		g.s.FB.SetPixel(px, py, c)
	}
	g.s.FB.MarkDirty()
}

// DrawSector draws (or fills) a pie-slice wedge of the given radius
// spanning [startAngle, startAngle+sweepAngle) - grounded on
// host/graphics.rs's draw_sector (Sector::new). A filled sector is
// rasterized as a fan of Bresenham spokes from the center to each
// sampled arc point, fine enough that adjacent spokes leave no gap at
// the circumference; an unfilled one draws the two bounding radii plus
// the arc.
func (g *GraphicsABI) DrawSector(cx, cy, radius int32, startAngle, sweepAngle float32, color int32, filled bool) {
	g.enter("draw_sector")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_sector", "invalid color index")
		return
	}
	c := byte(idx - 1)
	r := int(radius)
	if r <= 0 {
		return
	}
	steps := max(r*4, 8)
	plot := func(px, py int) { g.s.FB.SetPixel(px, py, c) }
	if filled {
		for i := 0; i <= steps; i++ {
			theta := float64(startAngle) + float64(sweepAngle)*float64(i)/float64(steps)
			ex, ey := arcPoint(int(cx), int(cy), r, theta)
			bresenham(int(cx), int(cy), ex, ey, plot)
		}
	} else {
		startX, startY := arcPoint(int(cx), int(cy), r, float64(startAngle))
		endX, endY := arcPoint(int(cx), int(cy), r, float64(startAngle)+float64(sweepAngle))
		bresenham(int(cx), int(cy), startX, startY, plot)
		bresenham(int(cx), int(cy), endX, endY, plot)
		for i := 0; i <= steps; i++ {
			theta := float64(startAngle) + float64(sweepAngle)*float64(i)/float64(steps)
			px, py := arcPoint(int(cx), int(cy), r, theta)
			plot(px, py)
		}
	}
	g.s.FB.MarkDirty()
}

// DrawImage blits a guest-owned packed image at (x,y).
func (g *GraphicsABI) DrawImage(ptr, length uint32, x, y int32) {
	g.enter("draw_image")
	data, err := g.s.Mem.Slice(ptr, length)
	if err != nil {
		g.logErrValue("draw_image", err)
		return
	}
	img, err := ParseImage(data)
	if err != nil {
		g.logErrValue("draw_image", err)
		return
	}
	img.Draw(g.s.FB, int(x), int(y))
}

// DrawSubImage blits the sub-rectangle [sx,sx+sw)x[sy,sy+sh) of a
// guest-owned packed image at (x,y).
func (g *GraphicsABI) DrawSubImage(ptr, length uint32, x, y, sx, sy, sw, sh int32) {
	g.enter("draw_sub_image")
	data, err := g.s.Mem.Slice(ptr, length)
	if err != nil {
		g.logErrValue("draw_sub_image", err)
		return
	}
	img, err := ParseImage(data)
	if err != nil {
		g.logErrValue("draw_sub_image", err)
		return
	}
	img.DrawSub(g.s.FB, int(x), int(y), int(sx), int(sy), int(sw), int(sh))
}

// DrawText decodes two guest slices - text and a bitmap font - and
// blits each glyph as a sub-image lookup into the font. text and font
// must not alias: they're borrowed via SplitImmutMut, the split helper
// double-slice calls use (text as its immutable slice, font as its
// mutable one), which additionally rejects equal pointers, matching the
// aliasing-rejection rule in spec.md §4.3 even though DrawText only reads
// both slices (the rule is about call-site discipline, not mutability).
func (g *GraphicsABI) DrawText(textPtr, textLen, fontPtr, fontLen uint32, x, y, color int32) {
	g.enter("draw_text")
	idx := uint32(color)
	if !ValidColorIndex(idx) {
		g.logErr("draw_text", "invalid color index")
		return
	}
	text, font, err := g.s.Mem.SplitImmutMut(textPtr, textLen, fontPtr, fontLen)
	if err != nil {
		g.logErrValue("draw_text", err)
		return
	}
	fontImg, err := ParseImage(font)
	if err != nil {
		g.logErrValue("draw_text", err)
		return
	}
	glyphW := fontImg.Width() / 96 // printable ASCII 0x20-0x7f
	if glyphW <= 0 {
		g.logErr("draw_text", "font image is narrower than 96 glyphs")
		return
	}
	cx := int(x)
	for _, ch := range text {
		if ch < 0x20 || ch > 0x7f {
			cx += glyphW
			continue
		}
		glyphIdx := int(ch) - 0x20
		fontImg.DrawSub(g.s.FB, cx, int(y), glyphIdx*glyphW, 0, glyphW, fontImg.Height())
		cx += glyphW
	}
}
