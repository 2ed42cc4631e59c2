package sheet

import (
	"image"

	"github.com/matzehuels/stakr/pkg/raster"
	"github.com/matzehuels/stakr/pkg/stack"
)

// Merge draws object over shadow for preview.
//
// The anchors share one column. The result is wide enough for the larger
// extent of either canvas on each side of that column and as tall as the
// deeper anchor; both canvases rest on its bottom edge, so anchors on their
// canvas's bottom edge meet at (left, height). The result's anchor is where
// the object's anchor landed. Canvases without an anchor use their bottom
// centre.
func Merge(object, shadow stack.Canvas) stack.Canvas {
	o, s := object.AnchorOrBottom(), shadow.AnchorOrBottom()
	osz, ssz := object.Size(), shadow.Size()

	left := max(o.X, s.X)
	right := max(osz.X-o.X, ssz.X-s.X)
	height := max(o.Y, s.Y)

	img := raster.New(left+right, height)
	img = raster.Over(img, shadow.Image, image.Pt(left-s.X, height-ssz.Y))
	at := image.Pt(left-o.X, height-osz.Y)
	img = raster.Over(img, object.Image, at)

	return stack.Canvas{Image: img, Anchor: o.Add(at), Anchored: true}
}
