package sheet

import (
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/stack"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func anchored(w, h int, c color.NRGBA, a image.Point) stack.Canvas {
	return stack.Canvas{Image: fill(w, h, c), Anchor: a, Anchored: true}
}

func testCanvases() []stack.Canvas {
	return []stack.Canvas{
		anchored(4, 6, red, image.Pt(2, 6)),
		anchored(8, 3, blue, image.Pt(4, 3)),
		{Image: fill(2, 2, red)},
	}
}

func TestAssemble(t *testing.T) {
	s, err := Assemble(testCanvases(), []int{0, 120, 240})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if s.CellWidth != 8 || s.CellHeight != 6 {
		t.Errorf("cell = %dx%d, want 8x6", s.CellWidth, s.CellHeight)
	}
	if got := s.Image.Bounds().Size(); got != image.Pt(s.CellWidth*3, 6) {
		t.Errorf("sheet size = %v, want %dx6", got, s.CellWidth*3)
	}

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{2, 0, red},            // first canvas centred: columns 2..5
		{1, 0, color.NRGBA{}},  // left padding
		{6, 5, color.NRGBA{}},  // right padding
		{8, 3, blue},           // second canvas bottom-aligned: rows 3..5
		{8, 2, color.NRGBA{}},  // above it
		{19, 4, red},           // third canvas at (16+3, 6-2)
		{18, 5, color.NRGBA{}}, // left of it
	}
	for _, tt := range tests {
		if got := s.Image.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	if !s.Anchored[0] || s.Anchors[0] != image.Pt(4, 6) {
		t.Errorf("anchor 0 = %v, want (4,6)", s.Anchors[0])
	}
	if !s.Anchored[1] || s.Anchors[1] != image.Pt(12, 6) {
		t.Errorf("anchor 1 = %v, want (12,6)", s.Anchors[1])
	}
	if s.Anchored[2] {
		t.Error("unanchored canvas should stay unanchored")
	}
}

func TestAssembleErrors(t *testing.T) {
	if _, err := Assemble(nil, nil); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("empty input error = %v, want VALIDATION", err)
	}
	if _, err := Assemble(testCanvases(), []int{0}); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("mismatched angles error = %v, want VALIDATION", err)
	}
}

func TestCell(t *testing.T) {
	s, err := Assemble(testCanvases(), []int{0, 120, 240})
	if err != nil {
		t.Fatal(err)
	}

	cell, err := s.Cell(1)
	if err != nil {
		t.Fatalf("Cell(1): %v", err)
	}
	if got := cell.Bounds().Size(); got != image.Pt(8, 6) {
		t.Errorf("cell size = %v, want 8x6", got)
	}
	if got := cell.NRGBAAt(0, 3); got != blue {
		t.Errorf("cell pixel = %v, want blue", got)
	}

	for _, n := range []int{-1, 3} {
		if _, err := s.Cell(n); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Cell(%d) error = %v, want NOT_FOUND", n, err)
		}
	}
}

func TestMergeSize(t *testing.T) {
	tests := []struct {
		name     string
		obj, shd stack.Canvas
		want     image.Point
	}{
		{
			name: "anchors on bottom",
			obj:  anchored(10, 20, red, image.Pt(5, 20)),
			shd:  anchored(14, 8, blue, image.Pt(3, 8)),
			want: image.Pt(5+11, 20),
		},
		{
			name: "raised object anchor",
			obj:  anchored(10, 20, red, image.Pt(7, 15)),
			shd:  anchored(14, 8, blue, image.Pt(3, 8)),
			want: image.Pt(7+11, 15),
		},
		{
			name: "deeper shadow",
			obj:  anchored(6, 4, red, image.Pt(3, 4)),
			shd:  anchored(6, 9, blue, image.Pt(3, 9)),
			want: image.Pt(6, 9),
		},
		{
			name: "unanchored",
			obj:  stack.Canvas{Image: fill(6, 4, red)},
			shd:  stack.Canvas{Image: fill(10, 2, blue)},
			want: image.Pt(10, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Merge(tt.obj, tt.shd)
			if got := m.Size(); got != tt.want {
				t.Errorf("Merge size = %v, want %v", got, tt.want)
			}
			if !m.Anchored {
				t.Error("merged canvas should be anchored")
			}
		})
	}
}

func TestMergeLayering(t *testing.T) {
	obj := anchored(4, 4, red, image.Pt(2, 4))
	shd := anchored(8, 2, blue, image.Pt(2, 2))
	m := Merge(obj, shd)

	// left=2, right=6, height=4; shadow at (0,2), object at (0,0).
	if got := m.Size(); got != image.Pt(8, 4) {
		t.Fatalf("size = %v, want 8x4", got)
	}
	if got := m.Image.NRGBAAt(1, 3); got != red {
		t.Errorf("object should cover the shadow, got %v", got)
	}
	if got := m.Image.NRGBAAt(6, 3); got != blue {
		t.Errorf("shadow should show beside the object, got %v", got)
	}
	if got := m.Image.NRGBAAt(6, 0); got != (color.NRGBA{}) {
		t.Errorf("uncovered pixel = %v", got)
	}
	if m.Anchor != image.Pt(2, 4) {
		t.Errorf("anchor = %v, want (2,4)", m.Anchor)
	}
}

func TestManifest(t *testing.T) {
	s, err := Assemble(testCanvases(), []int{0, 120, 240})
	if err != nil {
		t.Fatal(err)
	}

	m := NewManifest(s.Angles, s.Page("tree_obj.png", "obj"))
	data, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got Manifest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if len(got.Textures) != 1 || got.Textures[0].Image != "tree_obj.png" {
		t.Fatalf("textures = %+v", got.Textures)
	}
	page := got.Textures[0]
	if page.Size != (Size{W: 24, H: 6}) {
		t.Errorf("page size = %+v", page.Size)
	}
	if len(page.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(page.Frames))
	}

	f, ok := page.Frames["obj_120"]
	if !ok {
		t.Fatal("missing frame obj_120")
	}
	if f.Frame != (Rect{X: 8, Y: 0, W: 8, H: 6}) {
		t.Errorf("frame rect = %+v", f.Frame)
	}
	if f.Pivot == nil || *f.Pivot != (Pivot{X: 0.5, Y: 1}) {
		t.Errorf("pivot = %+v, want (0.5, 1)", f.Pivot)
	}
	if page.Frames["obj_240"].Pivot != nil {
		t.Error("unanchored frame should have no pivot")
	}
	if len(got.Meta.Angles) != 3 || got.Meta.App == "" {
		t.Errorf("meta = %+v", got.Meta)
	}
}

func TestFrameName(t *testing.T) {
	if got := FrameName("shd", 36); got != "shd_036" {
		t.Errorf("FrameName = %q", got)
	}
}
