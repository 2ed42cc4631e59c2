package sheet

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/stakr/pkg/buildinfo"
	"github.com/matzehuels/stakr/pkg/errors"
)

// Manifest is a TexturePacker array-format document: one page per sheet.
type Manifest struct {
	Textures []Page `json:"textures"`
	Meta     Meta   `json:"meta"`
}

// Page describes one sheet image and its frames.
type Page struct {
	Image  string           `json:"image"`
	Format string           `json:"format"`
	Size   Size             `json:"size"`
	Scale  float64          `json:"scale"`
	Frames map[string]Frame `json:"frames"`
}

// Frame is one cell. Cells are never trimmed or rotated.
type Frame struct {
	Frame            Rect   `json:"frame"`
	Rotated          bool   `json:"rotated"`
	Trimmed          bool   `json:"trimmed"`
	SpriteSourceSize Rect   `json:"spriteSourceSize"`
	SourceSize       Size   `json:"sourceSize"`
	Pivot            *Pivot `json:"pivot,omitempty"`
}

// Rect is a pixel rectangle.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Size is a pixel size.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Pivot is the anchor relative to the frame, 0..1 on each axis.
type Pivot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Meta carries producer information and the angle of every frame index.
type Meta struct {
	App    string `json:"app"`
	Angles []int  `json:"angles"`
}

// FrameName is the frame key of one angle, e.g. "obj_036".
func FrameName(prefix string, angle int) string {
	return fmt.Sprintf("%s_%03d", prefix, angle)
}

// Page describes s as a TexturePacker page stored in imageName.
func (s *Sheet) Page(imageName, prefix string) Page {
	b := s.Image.Bounds()
	p := Page{
		Image:  imageName,
		Format: "RGBA8888",
		Size:   Size{W: b.Dx(), H: b.Dy()},
		Scale:  1,
		Frames: make(map[string]Frame, s.Count()),
	}
	for n, angle := range s.Angles {
		r := s.cellRect(n)
		f := Frame{
			Frame:            Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()},
			SpriteSourceSize: Rect{W: r.Dx(), H: r.Dy()},
			SourceSize:       Size{W: r.Dx(), H: r.Dy()},
		}
		if s.Anchored[n] && r.Dx() > 0 && r.Dy() > 0 {
			a := s.Anchors[n].Sub(r.Min)
			f.Pivot = &Pivot{
				X: float64(a.X) / float64(r.Dx()),
				Y: float64(a.Y) / float64(r.Dy()),
			}
		}
		p.Frames[FrameName(prefix, angle)] = f
	}
	return p
}

// NewManifest collects pages into one document.
func NewManifest(angles []int, pages ...Page) Manifest {
	return Manifest{
		Textures: pages,
		Meta: Meta{
			App:    buildinfo.App(),
			Angles: append([]int(nil), angles...),
		},
	}
}

// Encode returns the indented JSON form of m.
func (m Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode manifest")
	}
	return append(data, '\n'), nil
}
