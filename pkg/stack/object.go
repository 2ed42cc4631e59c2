package stack

import (
	"image"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/raster"
)

// ObjectParams configures an object canvas.
type ObjectParams struct {
	Angle    float64 // rotation in degrees, counter-clockwise
	VStep    int     // vertical distance between layers; only |VStep| is used
	Squash   float64 // vertical scale applied before rotation
	Gradient Gradient
}

// layerGeometry is the squash and rotation shared by every layer of one
// angle. Object and shadow builds use the same geometry so their footprints
// line up pixel for pixel.
type layerGeometry struct {
	angle     float64
	sliceW    int
	squashedH int
	rotW      int
	rotH      int
}

func newLayerGeometry(s *Stack, angle, squash float64) (layerGeometry, error) {
	if s == nil || len(s.Slices) == 0 {
		return layerGeometry{}, errors.New(errors.ErrCodeValidation, "stack has no slices")
	}
	if err := errors.ValidateSquash(squash); err != nil {
		return layerGeometry{}, err
	}
	sw, h := s.SliceSize()
	sh := squashedHeight(h, squash)
	if sw < 1 || sh < 1 {
		return layerGeometry{}, errors.New(errors.ErrCodeValidation,
			"squash %v collapses %dx%d slices to %dx%d", squash, sw, h, sw, sh)
	}
	rw, rh := raster.RotatedSize(sw, sh, angle)
	return layerGeometry{angle: angle, sliceW: sw, squashedH: sh, rotW: rw, rotH: rh}, nil
}

// apply squashes and rotates one layer.
func (g layerGeometry) apply(layer *image.NRGBA) *image.NRGBA {
	return raster.RotateExpand(raster.ResizeNearest(layer, g.sliceW, g.squashedH), g.angle)
}

// BuildObject renders the stack at one angle.
//
// The canvas is as wide as a rotated layer and |VStep|·depth taller than
// one. Layers are drawn bottom to top so upper layers occlude lower ones.
// A stack with a single slice has no rendered layers and yields an empty
// canvas of one rotated layer, without an anchor.
func BuildObject(s *Stack, p ObjectParams) (Canvas, error) {
	g, err := newLayerGeometry(s, p.Angle, p.Squash)
	if err != nil {
		return Canvas{}, err
	}

	depth := s.Depth()
	step := abs(p.VStep)
	canvasH := g.rotH + step*depth
	c := Canvas{Image: raster.New(g.rotW, canvasH)}
	drop := BaselineDrop(g.sliceW, g.squashedH, Radians(p.Angle))

	for i, layer := range s.Layers() {
		rot := raster.Multiply(g.apply(layer), p.Gradient.At(i, depth))
		lw, lh := rot.Bounds().Dx(), rot.Bounds().Dy()

		x := (g.rotW - lw) / 2
		y := int(float64(canvasH-lh-step*i) + drop)
		c.Image = raster.Over(c.Image, rot, image.Pt(x, y))

		if i == 0 {
			c.setAnchor(image.Pt(x+lw/2, y+lh))
		}
	}
	return c, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
