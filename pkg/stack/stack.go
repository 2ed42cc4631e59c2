package stack

import (
	"image"
	"io"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/raster"
)

// Stack is a source sheet cut into its ordered slices.
// Slices are shared read-only by every per-angle build.
type Stack struct {
	Slices []*image.NRGBA
}

// Load cuts img into n equal-width vertical slices, left to right.
func Load(img image.Image, n int) (*Stack, error) {
	if err := errors.ValidateSlices(n); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx()%n != 0 {
		return nil, errors.New(errors.ErrCodeValidation,
			"source width %d is not divisible by %d slices", b.Dx(), n)
	}

	w := b.Dx() / n
	slices := make([]*image.NRGBA, n)
	for i := range slices {
		x0 := b.Min.X + i*w
		slices[i] = raster.Crop(img, image.Rect(x0, b.Min.Y, x0+w, b.Max.Y))
	}
	return &Stack{Slices: slices}, nil
}

// Decode reads a source sheet from r and slices it.
func Decode(r io.Reader, n int) (*Stack, error) {
	img, err := raster.Decode(r)
	if err != nil {
		return nil, err
	}
	return Load(img, n)
}

// LoadFile opens the source sheet at path and slices it.
func LoadFile(path string, n int) (*Stack, error) {
	img, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	return Load(img, n)
}

// Depth returns the number of rendered layers.
func (s *Stack) Depth() int {
	return len(s.Slices) - 1
}

// SliceSize returns the width and height shared by every slice.
func (s *Stack) SliceSize() (int, int) {
	b := s.Slices[0].Bounds()
	return b.Dx(), b.Dy()
}

// Layers returns the rendered slices, bottom to top.
func (s *Stack) Layers() []*image.NRGBA {
	return s.Slices[1:]
}

// Angles returns the rotation angles 0, inc, 2·inc, ... below 360.
// Object and shadow sheets are both built from this one sequence.
func Angles(inc int) []int {
	if inc <= 0 {
		return nil
	}
	angles := make([]int, 0, (359/inc)+1)
	for a := 0; a < 360; a += inc {
		angles = append(angles, a)
	}
	return angles
}
