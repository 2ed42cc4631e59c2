package sheet

import (
	"image"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/raster"
	"github.com/matzehuels/stakr/pkg/stack"
)

// Sheet is a horizontal strip of per-angle cells.
type Sheet struct {
	Image      *image.NRGBA
	CellWidth  int
	CellHeight int
	Angles     []int

	// Anchors holds each cell's anchor in sheet coordinates. Anchored[n] is
	// false for canvases that had none.
	Anchors  []image.Point
	Anchored []bool
}

// Assemble tiles canvases left to right. angles[n] labels canvases[n].
func Assemble(canvases []stack.Canvas, angles []int) (*Sheet, error) {
	if len(canvases) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "no canvases to assemble")
	}
	if len(angles) != len(canvases) {
		return nil, errors.New(errors.ErrCodeValidation,
			"%d canvases but %d angles", len(canvases), len(angles))
	}

	cw, ch := 0, 0
	for _, c := range canvases {
		sz := c.Size()
		cw = max(cw, sz.X)
		ch = max(ch, sz.Y)
	}

	s := &Sheet{
		Image:      raster.New(cw*len(canvases), ch),
		CellWidth:  cw,
		CellHeight: ch,
		Angles:     append([]int(nil), angles...),
		Anchors:    make([]image.Point, len(canvases)),
		Anchored:   make([]bool, len(canvases)),
	}
	for n, c := range canvases {
		sz := c.Size()
		at := image.Pt(n*cw+(cw-sz.X)/2, ch-sz.Y)
		s.Image = raster.Paste(s.Image, c.Image, at)
		if c.Anchored {
			s.Anchors[n] = c.Anchor.Add(at)
			s.Anchored[n] = true
		}
	}
	return s, nil
}

// Count returns the number of cells.
func (s *Sheet) Count() int {
	return len(s.Angles)
}

// Cell returns a copy of cell n.
func (s *Sheet) Cell(n int) (*image.NRGBA, error) {
	if n < 0 || n >= s.Count() {
		return nil, errors.New(errors.ErrCodeNotFound, "cell %d out of range [0, %d)", n, s.Count())
	}
	return raster.Crop(s.Image, s.cellRect(n)), nil
}

func (s *Sheet) cellRect(n int) image.Rectangle {
	return image.Rect(n*s.CellWidth, 0, (n+1)*s.CellWidth, s.CellHeight)
}
