package stack

import "image"

// Canvas is a rendered image plus the ground-contact point of its bottom layer.
type Canvas struct {
	Image *image.NRGBA

	// Anchor is only meaningful when Anchored is true. It is set once, from
	// the first rendered layer, and never moved afterwards.
	Anchor   image.Point
	Anchored bool
}

// Size returns the canvas dimensions.
func (c Canvas) Size() image.Point {
	return c.Image.Bounds().Size()
}

// AnchorOrBottom returns the anchor, or the bottom-centre point for
// canvases without one.
func (c Canvas) AnchorOrBottom() image.Point {
	if c.Anchored {
		return c.Anchor
	}
	s := c.Size()
	return image.Pt(s.X/2, s.Y)
}

func (c *Canvas) setAnchor(p image.Point) {
	if c.Anchored {
		return
	}
	c.Anchor = p
	c.Anchored = true
}
