package stack

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/raster"
)

// RGB is an opaque colour.
type RGB = raster.RGB

// White leaves layers untinted.
var White = RGB{R: 255, G: 255, B: 255}

// ParseHex parses "#RRGGBB" or "RRGGBB". Any other length or a non-hex
// digit is a PARSE error; short forms like "#FFF" are not accepted.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return RGB{}, errors.New(errors.ErrCodeParse, "colour %q must have exactly 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, errors.Wrap(errors.ErrCodeParse, err, "colour %q is not hexadecimal", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats c as "#RRGGBB".
func Hex(c RGB) string {
	const digits = "0123456789ABCDEF"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range [3]uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

// Lerp interpolates channel-wise from bottom (t=0) to top (t=1), rounding to
// the nearest integer. t is clamped to [0, 1].
func Lerp(top, bottom RGB, t float64) RGB {
	t = math.Max(0, math.Min(1, t))
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(b) + (float64(a)-float64(b))*t))
	}
	return RGB{
		R: mix(top.R, bottom.R),
		G: mix(top.G, bottom.G),
		B: mix(top.B, bottom.B),
	}
}

// Gradient tints layers from Bottom (first rendered layer) towards Top.
type Gradient struct {
	Top    RGB
	Bottom RGB
}

// ParseGradient parses the two colours of a gradient.
func ParseGradient(top, bottom string) (Gradient, error) {
	t, err := ParseHex(top)
	if err != nil {
		return Gradient{}, err
	}
	b, err := ParseHex(bottom)
	if err != nil {
		return Gradient{}, err
	}
	return Gradient{Top: t, Bottom: b}, nil
}

// At returns the tint of layer i in a stack of depth layers.
func (g Gradient) At(i, depth int) RGB {
	return Lerp(g.Top, g.Bottom, GradientT(i, depth))
}

// GradientT is the interpolation parameter of layer i in a stack of depth
// layers: i/depth, so the bottom layer gets the bottom colour and each layer
// above moves 1/depth towards the top colour. A stack without rendered
// layers uses 0.
func GradientT(i, depth int) float64 {
	if depth <= 0 {
		return 0
	}
	return float64(i) / float64(depth)
}
