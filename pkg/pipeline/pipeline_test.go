package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stakr/pkg/cache"
	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/observability"
	"github.com/matzehuels/stakr/pkg/raster"
	"github.com/matzehuels/stakr/pkg/sheet"
	"github.com/matzehuels/stakr/pkg/stack"
)

// writeSource writes a w×h source with an opaque, slightly varied body.
func writeSource(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 2; y < h-2; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y * 5), B: 200, A: 255})
		}
	}
	data, err := raster.EncodeBytes(img, raster.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Slices = 4
	opts.RotInc = 90
	return opts
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.RotInc != 36 || opts.VStep != -1 || opts.Squash != 1 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.ShadowAngle != 40 || opts.ShadowStep != 1 {
		t.Errorf("unexpected shadow defaults: %+v", opts)
	}
	if opts.GradTop != "#FFFFFF" || opts.GradBottom != "#FFFFFF" || opts.Format != "png" {
		t.Errorf("unexpected colour/format defaults: %+v", opts)
	}
	if n := len(opts.Angles()); n != 10 {
		t.Errorf("default angles = %d, want 10", n)
	}
}

func TestSetDefaults(t *testing.T) {
	opts := Options{Slices: 3}
	opts.SetDefaults()
	if opts.RotInc != DefaultRotInc || opts.Squash != DefaultSquash || opts.Format != "png" {
		t.Errorf("SetDefaults left zero fields: %+v", opts)
	}
	// Zero is a valid v_step and shadow step.
	if opts.VStep != 0 || opts.ShadowStep != 0 {
		t.Errorf("SetDefaults should not touch meaningful zeros: %+v", opts)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"valid", func(o *Options) {}, ""},
		{"no slices", func(o *Options) { o.Slices = 0 }, errors.ErrCodeValidation},
		{"negative rot_inc", func(o *Options) { o.RotInc = -5 }, errors.ErrCodeValidation},
		{"negative squash", func(o *Options) { o.Squash = -1 }, errors.ErrCodeValidation},
		{"negative workers", func(o *Options) { o.Workers = -1 }, errors.ErrCodeValidation},
		{"short colour", func(o *Options) { o.GradTop = "#FFF" }, errors.ErrCodeParse},
		{"bad colour", func(o *Options) { o.GradBottom = "#GGGGGG" }, errors.ErrCodeParse},
		{"jpeg", func(o *Options) { o.Format = "jpg" }, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Validate error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBakeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "tree.png", 360, 40)
	out := filepath.Join(dir, "out", "sheets")

	result, err := quietRunner(nil).Bake(context.Background(), src, out, testOptions())
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}

	if want := []int{0, 90, 180, 270}; len(result.Angles) != 4 || result.Angles[1] != 90 || result.Angles[3] != 270 {
		t.Errorf("angles = %v, want %v", result.Angles, want)
	}
	if result.ObjectPath != filepath.Join(out, "tree_obj.png") || result.ShadowPath != filepath.Join(out, "tree_shd.png") {
		t.Errorf("paths = %s, %s", result.ObjectPath, result.ShadowPath)
	}
	if result.ManifestPath != "" {
		t.Error("manifest should only be written on request")
	}
	if result.Stats.Slices != 4 || result.Stats.Depth != 3 {
		t.Errorf("stats = %+v", result.Stats)
	}

	// Independent per-angle builds give the expected cell sizes.
	s, err := stack.LoadFile(src, 4)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := quietRunner(nil).Frames(context.Background(), s, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	objW, objH, shdW, shdH := 0, 0, 0, 0
	for _, f := range frames {
		objW, objH = max(objW, f.Object.Size().X), max(objH, f.Object.Size().Y)
		shdW, shdH = max(shdW, f.Shadow.Size().X), max(shdH, f.Shadow.Size().Y)
	}
	if result.CellWidth != objW || result.CellHeight != objH {
		t.Errorf("cell = %dx%d, want %dx%d", result.CellWidth, result.CellHeight, objW, objH)
	}

	for _, c := range []struct {
		path     string
		w, h     int
		canvases []stack.Canvas
	}{
		{result.ObjectPath, objW, objH, objects(frames)},
		{result.ShadowPath, shdW, shdH, shadows(frames)},
	} {
		img, err := raster.Open(c.path)
		if err != nil {
			t.Fatalf("Open(%s): %v", c.path, err)
		}
		if got := img.Bounds().Size(); got != image.Pt(4*c.w, c.h) {
			t.Fatalf("%s size = %v, want %dx%d", filepath.Base(c.path), got, 4*c.w, c.h)
		}
		for n, cv := range c.canvases {
			checkTile(t, filepath.Base(c.path), img, n, c.w, c.h, cv)
		}
	}
}

func objects(frames []Frame) []stack.Canvas {
	out := make([]stack.Canvas, len(frames))
	for i, f := range frames {
		out[i] = f.Object
	}
	return out
}

func shadows(frames []Frame) []stack.Canvas {
	out := make([]stack.Canvas, len(frames))
	for i, f := range frames {
		out[i] = f.Shadow
	}
	return out
}

// checkTile verifies that tile n of a decoded sheet spans columns
// [n·cw, (n+1)·cw) and holds canvas c bottom-aligned and centred, with
// nothing else drawn in it.
func checkTile(t *testing.T, name string, sheetImg *image.NRGBA, n, cw, ch int, c stack.Canvas) {
	t.Helper()
	sz := c.Size()
	ox, oy := n*cw+(cw-sz.X)/2, ch-sz.Y
	for y := 0; y < ch; y++ {
		for x := n * cw; x < (n+1)*cw; x++ {
			got := sheetImg.NRGBAAt(x, y)
			var want color.NRGBA
			if p := image.Pt(x-ox, y-oy); p.In(c.Image.Bounds()) {
				want = c.Image.NRGBAAt(p.X, p.Y)
			}
			if got.A != want.A || (want.A != 0 && got != want) {
				t.Fatalf("%s tile %d pixel (%d,%d) = %v, want %v", name, n, x, y, got, want)
			}
		}
	}
}

func TestBakeDeterministic(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "crate.png", 360, 40)

	opts := testOptions()
	opts.RotInc = 30
	opts.Squash = 0.75
	opts.GradTop = "#FF8000"

	read := func(workers int, out string) ([]byte, []byte) {
		o := opts
		o.Workers = workers
		res, err := quietRunner(nil).Bake(context.Background(), src, out, o)
		if err != nil {
			t.Fatalf("Bake: %v", err)
		}
		obj, _ := os.ReadFile(res.ObjectPath)
		shd, _ := os.ReadFile(res.ShadowPath)
		return obj, shd
	}

	obj1, shd1 := read(1, filepath.Join(dir, "a"))
	obj2, shd2 := read(8, filepath.Join(dir, "b"))
	if !bytes.Equal(obj1, obj2) || !bytes.Equal(shd1, shd2) {
		t.Error("bakes with the same input should be byte-identical")
	}
}

func TestBakeNotDivisible(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "odd.png", 10, 8)
	out := filepath.Join(dir, "out")

	opts := testOptions()
	opts.Slices = 3
	_, err := quietRunner(nil).Bake(context.Background(), src, out, opts)
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Fatalf("Bake error = %v, want VALIDATION", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("failed bake should not create the output directory")
	}
}

func TestBakeKeepsPreviousOutputsOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "tree.png", 360, 40)
	out := filepath.Join(dir, "out")
	r := quietRunner(nil)

	first, err := r.Bake(context.Background(), src, out, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(first.ObjectPath)

	bad := testOptions()
	bad.GradTop = "nope"
	if _, err := r.Bake(context.Background(), src, out, bad); !errors.Is(err, errors.ErrCodeParse) {
		t.Fatalf("Bake error = %v, want PARSE", err)
	}
	after, _ := os.ReadFile(first.ObjectPath)
	if !bytes.Equal(before, after) {
		t.Error("failed bake should not touch earlier sheets")
	}
}

func TestBakeMissingSource(t *testing.T) {
	_, err := quietRunner(nil).Bake(context.Background(), filepath.Join(t.TempDir(), "nope.png"), t.TempDir(), testOptions())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Bake error = %v, want NOT_FOUND", err)
	}
}

func TestBakeManifest(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "tree.png", 360, 40)

	opts := testOptions()
	opts.Manifest = true
	result, err := quietRunner(nil).Bake(context.Background(), src, dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.ManifestPath != filepath.Join(dir, "tree.json") {
		t.Fatalf("manifest path = %q", result.ManifestPath)
	}

	data, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatal(err)
	}
	var m sheet.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if len(m.Textures) != 2 || m.Textures[0].Image != "tree_obj.png" || m.Textures[1].Image != "tree_shd.png" {
		t.Fatalf("textures = %+v", m.Textures)
	}
	if _, ok := m.Textures[1].Frames["shd_270"]; !ok {
		t.Error("missing frame shd_270")
	}
	if f := m.Textures[0].Frames["obj_000"]; f.Frame.W != result.CellWidth {
		t.Errorf("frame width = %d, want %d", f.Frame.W, result.CellWidth)
	}
}

func TestBakeCache(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "tree.png", 360, 40)
	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(c)
	opts := testOptions()
	opts.Manifest = true

	first, err := r.Bake(context.Background(), src, filepath.Join(dir, "a"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first bake should miss")
	}

	second, err := r.Bake(context.Background(), src, filepath.Join(dir, "b"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second bake should hit")
	}
	if second.CellWidth != first.CellWidth || second.CellHeight != first.CellHeight {
		t.Error("cached bake should report the same cell size")
	}
	for _, pair := range [][2]string{
		{first.ObjectPath, second.ObjectPath},
		{first.ShadowPath, second.ShadowPath},
		{first.ManifestPath, second.ManifestPath},
	} {
		a, _ := os.ReadFile(pair[0])
		b, _ := os.ReadFile(pair[1])
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between fresh and cached bake", filepath.Base(pair[0]))
		}
	}

	opts.Refresh = true
	third, err := r.Bake(context.Background(), src, filepath.Join(dir, "c"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestFramesCanceled(t *testing.T) {
	s, err := stack.Load(image.NewNRGBA(image.Rect(0, 0, 40, 10)), 4)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = quietRunner(nil).Frames(ctx, s, testOptions())
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Frames error = %v, want CANCELED", err)
	}
}

func TestFramesOrder(t *testing.T) {
	s, err := stack.Load(image.NewNRGBA(image.Rect(0, 0, 40, 10)), 4)
	if err != nil {
		t.Fatal(err)
	}
	opts := testOptions()
	opts.RotInc = 15
	opts.Workers = 4

	frames, err := quietRunner(nil).Frames(context.Background(), s, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 24 {
		t.Fatalf("frames = %d, want 24", len(frames))
	}
	for i, f := range frames {
		if f.Angle != i*15 {
			t.Fatalf("frame %d has angle %d", i, f.Angle)
		}
	}
}

type countingHooks struct {
	observability.NoopBakeHooks
	angles    atomic.Int32
	completed atomic.Int32
}

func (h *countingHooks) OnAngleComplete(context.Context, int, time.Duration, error) {
	h.angles.Add(1)
}

func (h *countingHooks) OnBakeComplete(context.Context, string, int, time.Duration, error) {
	h.completed.Add(1)
}

func TestBakeHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetBakeHooks(hooks)
	defer observability.Reset()

	dir := t.TempDir()
	src := writeSource(t, dir, "tree.png", 360, 40)
	if _, err := quietRunner(nil).Bake(context.Background(), src, dir, testOptions()); err != nil {
		t.Fatal(err)
	}
	if got := hooks.angles.Load(); got != 4 {
		t.Errorf("OnAngleComplete fired %d times, want 4", got)
	}
	if got := hooks.completed.Load(); got != 1 {
		t.Errorf("OnBakeComplete fired %d times, want 1", got)
	}
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "tree.png", 360, 40)

	frames, err := quietRunner(nil).PreviewFile(context.Background(), src, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 4 {
		t.Fatalf("frames = %d, want 4", len(frames))
	}
	for _, f := range frames {
		if !f.Canvas.Anchored {
			t.Errorf("angle %d: merged frame should be anchored", f.Angle)
		}
		if sz := f.Canvas.Size(); sz.X < 40 || sz.Y < 40 {
			t.Errorf("angle %d: merged frame too small: %v", f.Angle, sz)
		}
	}
}

func TestBakeBytesRejectsBadStem(t *testing.T) {
	_, err := quietRunner(nil).BakeBytes(context.Background(), "..", []byte("x"), t.TempDir(), testOptions())
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("BakeBytes error = %v, want VALIDATION", err)
	}
}
