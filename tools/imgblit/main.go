// tools/imgblit/main.go - offline PNG/font -> packed sprite converter
//
// The screenshot/image-codec internals the spec's framebuffer pipeline
// reads are a Non-goal for the runtime itself to produce, but the
// packed format image.go parses still needs a real producer to be
// testable end to end. imgblit quantizes an input PNG to a 16-color
// palette with x/image/draw's paletted Floyd-Steinberg path and emits
// image.go's header-prefixed packed format; its "font" mode instead
// rasterizes basicfont.Face7x13 into the 96-glyph strip draw_text
// expects.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	imageMagic  = 0x21
	glyphFirst  = 0x20
	glyphLast   = 0x7f
	glyphCount  = glyphLast - glyphFirst + 1
	defaultBPP  = 4
	transparent = 0xff
)

func main() {
	mode := flag.String("mode", "image", "image or font")
	in := flag.String("in", "", "input PNG path (image mode only)")
	out := flag.String("out", "", "output packed-sprite path")
	bpp := flag.Int("bpp", defaultBPP, "bits per pixel: 1, 2, or 4")
	flag.Parse()

	var err error
	switch *mode {
	case "font":
		err = convertFont(*out, *bpp)
	default:
		if *in == "" {
			err = fmt.Errorf("imgblit: -in is required in image mode")
		} else {
			err = convertImage(*in, *out, *bpp)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "imgblit:", err)
		os.Exit(1)
	}
}

// palette16 is the fixed 16-entry palette every packed sprite quantizes
// against - a greyscale ramp stands in for the app-supplied palette an
// app would normally ship, since imgblit only needs to produce a
// structurally valid asset, not a visually matched one.
var palette16 = func() color.Palette {
	p := make(color.Palette, 16)
	for i := range p {
		v := uint8(i * 17)
		p[i] = color.RGBA{R: v, G: v, B: v, A: 0xff}
	}
	return p
}()

func convertImage(inPath, outPath string, bpp int) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decode png: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewPaletted(image.Rect(0, 0, w, h), palette16)
	xdraw.FloydSteinberg.Draw(dst, dst.Bounds(), src, bounds.Min)

	pixels := packIndices(dst.Pix, w, h, bpp)
	return writeSprite(outPath, bpp, w, h, transparent, identitySwaps(), pixels)
}

// convertFont rasterizes basicfont.Face7x13's printable ASCII range into
// one glyphCount-wide strip, matching the fixed-cell-width layout
// draw_text expects (glyphW = image width / 96).
func convertFont(outPath string, bpp int) error {
	face := basicfont.Face7x13
	cellW, cellH := face.Advance, face.Height
	w, h := cellW*glyphCount, cellH
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}
	for i := 0; i < glyphCount; i++ {
		ch := rune(glyphFirst + i)
		d.Dot = fixed.P(i*cellW, face.Ascent)
		d.DrawString(string(ch))
	}

	dst := image.NewPaletted(image.Rect(0, 0, w, h), palette16)
	draw.Draw(dst, dst.Bounds(), img, image.Point{}, draw.Src)
	pixels := packIndices(dst.Pix, w, h, bpp)
	return writeSprite(outPath, bpp, w, h, -1, identitySwaps(), pixels)
}

func identitySwaps() [8]byte {
	var swaps [8]byte
	for i := range swaps {
		swaps[i] = byte((2*i)<<4) | byte(2*i+1)
	}
	return swaps
}

// packIndices packs a row-major byte-per-pixel palette index buffer into
// bpp-bits-per-pixel rows, each row starting on a fresh byte per
// image.go's ParseImage (spec.md §3: "packed pixel rows, each row
// byte-aligned"), bits packed low-bit-first within each byte matching
// image.go's pixelAt.
func packIndices(idx []byte, w, h, bpp int) []byte {
	rowBytes := (w*bpp + 7) / 8
	out := make([]byte, rowBytes*h)
	mask := byte((1 << bpp) - 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := idx[y*w+x]
			bitIndex := x * bpp
			byteIndex := y*rowBytes + bitIndex/8
			shift := bitIndex % 8
			out[byteIndex] |= (v & mask) << shift
		}
	}
	return out
}

// swapTableBytes mirrors image.go's on-wire swap-table length: 1/2/8
// bytes for bpp 1/2/4.
func swapTableBytes(bpp int) int {
	switch bpp {
	case 1:
		return 1
	case 2:
		return 2
	default:
		return 8
	}
}

func writeSprite(path string, bpp, w, h, transparentIdx int, swaps [8]byte, pixels []byte) error {
	swapLen := swapTableBytes(bpp)
	header := make([]byte, 0, 5+swapLen+len(pixels))
	header = append(header, imageMagic, byte(bpp))
	header = append(header, byte(w), byte(w>>8))
	header = append(header, byte(transparentIdx))
	header = append(header, swaps[:swapLen]...)
	header = append(header, pixels...)
	return os.WriteFile(path, header, 0o644)
}
