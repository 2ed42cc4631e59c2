package stack

import (
	"image"
	"math"

	"github.com/matzehuels/stakr/pkg/raster"
)

// ShadowParams configures a shadow canvas.
type ShadowParams struct {
	ObjectAngle float64 // must match the object canvas angle
	Squash      float64 // must match the object canvas squash
	Vector      ShadowVector
}

// BuildShadow renders the drop shadow of the stack at one angle.
//
// Layer i is drawn as a black silhouette displaced by i steps of the shadow
// vector. The canvas grows by the total displacement in whichever direction
// the vector points, so every silhouette fits.
func BuildShadow(s *Stack, p ShadowParams) (Canvas, error) {
	g, err := newLayerGeometry(s, p.ObjectAngle, p.Squash)
	if err != nil {
		return Canvas{}, err
	}

	depth := s.Depth()
	dx, dy := p.Vector.Delta()
	minDX, maxDX := ordered(0, dx*float64(depth))
	minDY, maxDY := ordered(0, dy*float64(depth))

	cw := g.rotW + int(math.Round(maxDX-minDX))
	ch := g.rotH + int(math.Round(maxDY-minDY))
	baseX := -int(math.Round(minDX))
	baseY := -int(math.Round(minDY))
	c := Canvas{Image: raster.New(cw, ch)}

	for i, layer := range s.Layers() {
		sil := raster.Silhouette(g.apply(layer))
		lw, lh := sil.Bounds().Dx(), sil.Bounds().Dy()

		ox := int(math.Round(dx*float64(i))) + baseX
		oy := int(math.Round(dy*float64(i))) + baseY
		c.Image = raster.PasteMasked(c.Image, sil, image.Pt(ox, oy))

		if i == 0 {
			c.setAnchor(image.Pt(ox+lw/2, oy+lh))
		}
	}
	return c, nil
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
