package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stakr/pkg/cache"
	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/observability"
	"github.com/matzehuels/stakr/pkg/raster"
	"github.com/matzehuels/stakr/pkg/sheet"
	"github.com/matzehuels/stakr/pkg/stack"
)

// Runner executes bakes with caching.
//
// The Runner holds no per-bake state, so one Runner may serve concurrent
// bakes with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the DefaultKeyer and a nil logger the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Build
// =============================================================================

// Frames renders the object and shadow canvases of every angle.
//
// Angles are built concurrently, at most opts.Workers at a time. The result
// is in angle order whatever order the builds finish in. The first failure
// cancels the remaining angles.
func (r *Runner) Frames(ctx context.Context, s *stack.Stack, opts Options) ([]Frame, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	grad, err := stack.ParseGradient(opts.GradTop, opts.GradBottom)
	if err != nil {
		return nil, err
	}

	angles := opts.Angles()
	frames := make([]Frame, len(angles))
	vec := stack.ShadowVector{Angle: opts.ShadowAngle, Step: opts.ShadowStep}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, angle := range angles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			f, err := buildFrame(s, angle, opts, grad, vec)
			observability.Bake().OnAngleComplete(gctx, angle, time.Since(start), err)
			if err != nil {
				return err
			}
			frames[i] = f
			r.Logger.Debug("built angle", "angle", angle, "duration", time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.FromContext(ctx.Err())
		}
		return nil, err
	}
	return frames, nil
}

func buildFrame(s *stack.Stack, angle int, opts Options, grad stack.Gradient, vec stack.ShadowVector) (Frame, error) {
	obj, err := stack.BuildObject(s, stack.ObjectParams{
		Angle:    float64(angle),
		VStep:    opts.VStep,
		Squash:   opts.Squash,
		Gradient: grad,
	})
	if err != nil {
		return Frame{}, err
	}
	shd, err := stack.BuildShadow(s, stack.ShadowParams{
		ObjectAngle: float64(angle),
		Squash:      opts.Squash,
		Vector:      vec,
	})
	if err != nil {
		return Frame{}, err
	}
	return Frame{Angle: angle, Object: obj, Shadow: shd}, nil
}

// Preview decodes a source and merges each angle's object over its shadow.
func (r *Runner) Preview(ctx context.Context, data []byte, opts Options) ([]PreviewFrame, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	s, err := stack.Decode(bytes.NewReader(data), opts.Slices)
	if err != nil {
		return nil, err
	}
	frames, err := r.Frames(ctx, s, opts)
	if err != nil {
		return nil, err
	}

	out := make([]PreviewFrame, len(frames))
	for i, f := range frames {
		out[i] = PreviewFrame{Angle: f.Angle, Canvas: sheet.Merge(f.Object, f.Shadow)}
	}
	return out, nil
}

// PreviewFile is Preview for a source on disk.
func (r *Runner) PreviewFile(ctx context.Context, path string, opts Options) ([]PreviewFrame, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return r.Preview(ctx, data, opts)
}

// =============================================================================
// Bake
// =============================================================================

// baked is everything a bake writes, in memory.
type baked struct {
	object     []byte
	shadow     []byte
	cellWidth  int
	cellHeight int
	pages      []sheet.Page // object, shadow; image names are filled at write time
}

// bakedMeta is the cached form of baked without the sheet bytes.
type bakedMeta struct {
	CellWidth  int          `json:"cell_width"`
	CellHeight int          `json:"cell_height"`
	Pages      []sheet.Page `json:"pages"`
}

// Bake reads the source at src and writes its sheets under outDir.
func (r *Runner) Bake(ctx context.Context, src, outDir string, opts Options) (*Result, error) {
	data, err := readSource(src)
	if err != nil {
		return nil, err
	}
	return r.BakeBytes(ctx, filepath.Base(src), data, outDir, opts)
}

// BakeBytes bakes an in-memory source. name supplies the output stem.
//
// Both sheets are encoded before anything is written. A failure leaves no
// new sheet in outDir; sheets from earlier bakes are left as they were.
func (r *Runner) BakeBytes(ctx context.Context, name string, data []byte, outDir string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if err := errors.ValidateStem(stem); err != nil {
		return nil, err
	}
	format, _ := raster.ParseFormat(opts.Format)

	angles := opts.Angles()
	start := time.Now()
	observability.Bake().OnBakeStart(ctx, name, len(angles))

	result, err := r.bake(ctx, stem, data, outDir, format, opts)
	observability.Bake().OnBakeComplete(ctx, name, len(angles), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("baked sheets",
		"source", name,
		"angles", len(angles),
		"cell", sizeString(result.CellWidth, result.CellHeight),
		"cached", result.CacheHit,
		"duration", time.Since(start))
	return result, nil
}

func (r *Runner) bake(ctx context.Context, stem string, data []byte, outDir string, format raster.Format, opts Options) (*Result, error) {
	result := &Result{Angles: opts.Angles()}
	result.Stats.Slices = opts.Slices
	result.Stats.Depth = opts.Slices - 1

	key := r.Keyer.SheetKey(cache.Hash(data), opts.SheetKeyOpts())
	out, hit := r.cached(ctx, key, opts)
	if !hit {
		var err error
		if out, err = r.build(ctx, data, format, opts, &result.Stats); err != nil {
			return nil, err
		}
		r.store(ctx, key, out)
	}
	result.CacheHit = hit
	result.CellWidth, result.CellHeight = out.cellWidth, out.cellHeight

	writeStart := time.Now()
	if err := r.write(stem, outDir, format, out, opts, result); err != nil {
		return nil, err
	}
	result.Stats.WriteTime = time.Since(writeStart)
	return result, nil
}

// build runs load, build and assemble, and encodes both sheets.
func (r *Runner) build(ctx context.Context, data []byte, format raster.Format, opts Options, stats *Stats) (*baked, error) {
	loadStart := time.Now()
	s, err := stack.Decode(bytes.NewReader(data), opts.Slices)
	if err != nil {
		return nil, err
	}
	stats.LoadTime = time.Since(loadStart)

	buildStart := time.Now()
	frames, err := r.Frames(ctx, s, opts)
	if err != nil {
		return nil, err
	}

	objects := make([]stack.Canvas, len(frames))
	shadows := make([]stack.Canvas, len(frames))
	angles := make([]int, len(frames))
	for i, f := range frames {
		objects[i], shadows[i], angles[i] = f.Object, f.Shadow, f.Angle
	}

	objSheet, err := sheet.Assemble(objects, angles)
	if err != nil {
		return nil, err
	}
	shdSheet, err := sheet.Assemble(shadows, angles)
	if err != nil {
		return nil, err
	}

	objData, err := raster.EncodeBytes(objSheet.Image, format)
	if err != nil {
		return nil, err
	}
	shdData, err := raster.EncodeBytes(shdSheet.Image, format)
	if err != nil {
		return nil, err
	}
	stats.BuildTime = time.Since(buildStart)

	return &baked{
		object:     objData,
		shadow:     shdData,
		cellWidth:  objSheet.CellWidth,
		cellHeight: objSheet.CellHeight,
		pages:      []sheet.Page{objSheet.Page("", "obj"), shdSheet.Page("", "shd")},
	}, nil
}

// =============================================================================
// Cache
// =============================================================================

const sheetKeyType = "sheet"

// cached returns the sheets stored under key. Any missing or unreadable part
// counts as a miss.
func (r *Runner) cached(ctx context.Context, key string, opts Options) (*baked, bool) {
	if opts.Refresh {
		return nil, false
	}

	get := func(suffix string) []byte {
		data, hit, err := r.Cache.Get(ctx, key+suffix)
		if err != nil {
			r.Logger.Debug("cache read failed", "key", key+suffix, "error", err)
			return nil
		}
		if !hit {
			return nil
		}
		return data
	}

	obj, shd, metaData := get(":obj"), get(":shd"), get(":meta")
	var meta bakedMeta
	if obj == nil || shd == nil || metaData == nil || json.Unmarshal(metaData, &meta) != nil || len(meta.Pages) != 2 {
		observability.Cache().OnCacheMiss(ctx, sheetKeyType)
		return nil, false
	}

	observability.Cache().OnCacheHit(ctx, sheetKeyType)
	return &baked{
		object:     obj,
		shadow:     shd,
		cellWidth:  meta.CellWidth,
		cellHeight: meta.CellHeight,
		pages:      meta.Pages,
	}, true
}

// store caches a bake. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, key string, b *baked) {
	meta, err := json.Marshal(bakedMeta{CellWidth: b.cellWidth, CellHeight: b.cellHeight, Pages: b.pages})
	if err != nil {
		return
	}
	for suffix, data := range map[string][]byte{":obj": b.object, ":shd": b.shadow, ":meta": meta} {
		if err := r.Cache.Set(ctx, key+suffix, data, cache.TTLSheet); err != nil {
			r.Logger.Debug("cache write failed", "key", key+suffix, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, sheetKeyType, len(data))
	}
}

// =============================================================================
// Write
// =============================================================================

type outputFile struct {
	path string
	data []byte
}

func (r *Runner) write(stem, outDir string, format raster.Format, b *baked, opts Options, result *Result) error {
	files := []outputFile{
		{filepath.Join(outDir, stem+ObjectSuffix+format.Ext()), b.object},
		{filepath.Join(outDir, stem+ShadowSuffix+format.Ext()), b.shadow},
	}

	if opts.Manifest {
		pages := make([]sheet.Page, len(b.pages))
		copy(pages, b.pages)
		pages[0].Image = filepath.Base(files[0].path)
		pages[1].Image = filepath.Base(files[1].path)
		doc, err := sheet.NewManifest(result.Angles, pages...).Encode()
		if err != nil {
			return err
		}
		result.ManifestPath = filepath.Join(outDir, stem+ManifestSuffix)
		files = append(files, outputFile{result.ManifestPath, doc})
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", outDir)
	}
	for _, f := range files {
		if err := writeFileAtomic(f.path, f.data); err != nil {
			return err
		}
	}
	result.ObjectPath, result.ShadowPath = files[0].path, files[1].path
	return nil
}

// writeFileAtomic writes data to a temporary file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "source %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read source %s", path)
	}
	return data, nil
}

func sizeString(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}
