package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// RGB is an opaque colour used for channel multiplication.
type RGB struct {
	R, G, B uint8
}

// New returns a fully transparent w×h image.
func New(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{})
}

// Crop returns a copy of the rect region of img, re-anchored at the origin.
func Crop(img image.Image, rect image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, rect)
}

// ResizeNearest scales img to exactly w×h with nearest-neighbour sampling.
// Both dimensions must be at least 1.
func ResizeNearest(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, imaging.NearestNeighbor)
}

// RotatedSize returns the bounding box of a w×h image rotated by deg degrees.
func RotatedSize(w, h int, deg float64) (int, int) {
	switch quarterTurns(deg) {
	case 0, 2:
		return w, h
	case 1, 3:
		return h, w
	}
	c, s := trig(deg)
	cx, cy := float64(w)/2, float64(h)/2
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{0, 0}, {float64(w), 0}, {float64(w), float64(h)}, {0, float64(h)}} {
		x := c*(p[0]-cx) + s*(p[1]-cy) + cx
		y := -s*(p[0]-cx) + c*(p[1]-cy) + cy
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return int(math.Ceil(maxX) - math.Floor(minX)), int(math.Ceil(maxY) - math.Floor(minY))
}

// RotateExpand rotates img counter-clockwise by deg degrees about its centre,
// expanding the canvas to hold the whole result. Uncovered pixels are transparent.
func RotateExpand(img image.Image, deg float64) *image.NRGBA {
	switch quarterTurns(deg) {
	case 0:
		return imaging.Clone(img)
	case 1:
		return imaging.Rotate90(img)
	case 2:
		return imaging.Rotate180(img)
	case 3:
		return imaging.Rotate270(img)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	nw, nh := RotatedSize(w, h, deg)
	dst := New(nw, nh)

	c, s := trig(deg)
	cx, cy := float64(b.Min.X)+float64(w)/2, float64(b.Min.Y)+float64(h)/2
	ncx, ncy := float64(nw)/2, float64(nh)/2

	// Source to destination: rotate about (cx, cy) then move to (ncx, ncy).
	// Screen y points down, so a counter-clockwise turn uses +sin on x.
	s2d := f64.Aff3{
		c, s, ncx - c*cx - s*cy,
		-s, c, ncy + s*cx - c*cy,
	}
	xdraw.NearestNeighbor.Transform(dst, s2d, img, b, xdraw.Src, nil)
	return dst
}

// quarterTurns reports how many quarter turns deg is, or -1 if it is not an
// exact multiple of 90 degrees.
func quarterTurns(deg float64) int {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	for q := 0; q < 4; q++ {
		if d == float64(q*90) {
			return q
		}
	}
	return -1
}

// trig returns cos and sin of deg rounded to 15 decimals, so values like
// cos(90°) collapse to zero instead of growing the box by a pixel.
func trig(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return round15(math.Cos(rad)), round15(math.Sin(rad))
}

func round15(v float64) float64 {
	return math.Round(v*1e15) / 1e15
}

// Multiply multiplies every colour channel by k (c·k/255, truncated). Alpha
// is untouched.
func Multiply(img image.Image, k RGB) *image.NRGBA {
	if k == (RGB{255, 255, 255}) {
		return imaging.Clone(img)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: mul255(c.R, k.R),
			G: mul255(c.G, k.G),
			B: mul255(c.B, k.B),
			A: c.A,
		}
	})
}

// mul255 truncates. Colour lerps in package stack round instead, so
// fractional channel products here always land one step darker.
func mul255(a, b uint8) uint8 {
	return uint8(uint16(a) * uint16(b) / 255)
}

// Silhouette returns img with every colour channel forced to black and the
// alpha channel copied unchanged.
func Silhouette(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{A: c.A}
	})
}

// Over composites src onto dst at pt with source-over blending.
func Over(dst *image.NRGBA, src image.Image, pt image.Point) *image.NRGBA {
	return imaging.Overlay(dst, src, pt, 1.0)
}

// PasteMasked overwrites dst with src at pt, masked by src's own alpha:
// each channel becomes src·m + dst·(1-m) with m = src alpha. Opaque source
// pixels replace the destination, transparent ones leave it untouched.
// dst is modified in place and returned.
func PasteMasked(dst *image.NRGBA, src *image.NRGBA, pt image.Point) *image.NRGBA {
	sb := src.Bounds()
	r := image.Rectangle{Min: pt, Max: pt.Add(sb.Size())}.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := src.NRGBAAt(sb.Min.X+x-pt.X, sb.Min.Y+y-pt.Y)
			switch s.A {
			case 0:
				continue
			case 255:
				dst.SetNRGBA(x, y, s)
				continue
			}
			d := dst.NRGBAAt(x, y)
			m := uint16(s.A)
			dst.SetNRGBA(x, y, color.NRGBA{
				R: mix8(d.R, s.R, m),
				G: mix8(d.G, s.G, m),
				B: mix8(d.B, s.B, m),
				A: mix8(d.A, s.A, m),
			})
		}
	}
	return dst
}

// mix8 truncates like mul255.
func mix8(d, s uint8, m uint16) uint8 {
	return uint8((uint16(s)*m + uint16(d)*(255-m)) / 255)
}

// Paste copies src into dst at pt, replacing the covered pixels.
func Paste(dst *image.NRGBA, src image.Image, pt image.Point) *image.NRGBA {
	return imaging.Paste(dst, src, pt)
}
