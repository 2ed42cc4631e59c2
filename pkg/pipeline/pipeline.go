// Package pipeline bakes sprite-stack sources into object and shadow sheets.
//
// This package ties slicing, per-angle compositing and sheet assembly into
// one call that the CLI, the TUI preview and the HTTP server all share, so
// every entry point applies the same defaults, validation and caching.
//
// # Stages
//
//  1. Load: decode the source and cut it into slices
//  2. Build: render object and shadow canvases for every angle, in parallel
//  3. Assemble: tile both canvas sets into sheets and encode them
//  4. Write: persist both sheets only after both encoded
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Slices = 16
//	result, err := runner.Bake(ctx, "tree.png", "out", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.ObjectPath, result.ShadowPath)
//
// Preview frames merge each angle's object and shadow without touching disk:
//
//	frames, err := runner.Preview(ctx, data, opts)
package pipeline

import (
	"runtime"
	"time"

	"github.com/matzehuels/stakr/pkg/cache"
	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/raster"
	"github.com/matzehuels/stakr/pkg/stack"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI and Server
// =============================================================================

const (
	// DefaultRotInc is the default angle step in degrees (10 frames).
	DefaultRotInc = 36

	// DefaultVStep stacks layers one pixel apart, upwards.
	DefaultVStep = -1

	// DefaultSquash leaves layers unscaled.
	DefaultSquash = 1.0

	// DefaultShadowAngle casts shadows up and to the right.
	DefaultShadowAngle = 40.0

	// DefaultShadowStep moves each silhouette one pixel along the shadow angle.
	DefaultShadowStep = 1.0

	// DefaultGradient leaves layers untinted.
	DefaultGradient = "#FFFFFF"
)

// Suffixes of the files written next to each other by a bake.
const (
	ObjectSuffix   = "_obj"
	ShadowSuffix   = "_shd"
	ManifestSuffix = ".json"
)

// =============================================================================
// Options - Bake Configuration
// =============================================================================

// Options configures a bake. It is loaded from flags, config files and HTTP
// form fields alike.
//
// VStep, ShadowAngle and ShadowStep are meaningful at zero, so SetDefaults
// cannot tell "unset" from "zero" for them; start from DefaultOptions.
type Options struct {
	Slices      int     `json:"slices" toml:"slices" yaml:"slices"`
	RotInc      int     `json:"rot_inc" toml:"rot_inc" yaml:"rot_inc"`
	VStep       int     `json:"v_step" toml:"v_step" yaml:"v_step"`
	Squash      float64 `json:"squash" toml:"squash" yaml:"squash"`
	ShadowAngle float64 `json:"shadow_angle" toml:"shadow_angle" yaml:"shadow_angle"`
	ShadowStep  float64 `json:"shadow_step" toml:"shadow_step" yaml:"shadow_step"`
	GradTop     string  `json:"grad_top" toml:"grad_top" yaml:"grad_top"`
	GradBottom  string  `json:"grad_bottom" toml:"grad_bottom" yaml:"grad_bottom"`

	Format   string `json:"format,omitempty" toml:"format" yaml:"format"`
	Workers  int    `json:"workers,omitempty" toml:"workers" yaml:"workers"` // 0 uses every CPU
	Manifest bool   `json:"manifest,omitempty" toml:"manifest" yaml:"manifest"`
	Refresh  bool   `json:"refresh,omitempty" toml:"refresh" yaml:"refresh"`
}

// DefaultOptions returns the defaults for every field except Slices, which
// depends on the source and has none.
func DefaultOptions() Options {
	return Options{
		RotInc:      DefaultRotInc,
		VStep:       DefaultVStep,
		Squash:      DefaultSquash,
		ShadowAngle: DefaultShadowAngle,
		ShadowStep:  DefaultShadowStep,
		GradTop:     DefaultGradient,
		GradBottom:  DefaultGradient,
		Format:      string(raster.DefaultFormat),
	}
}

// SetDefaults fills fields whose zero value is invalid.
func (o *Options) SetDefaults() {
	if o.RotInc == 0 {
		o.RotInc = DefaultRotInc
	}
	if o.Squash == 0 {
		o.Squash = DefaultSquash
	}
	if o.GradTop == "" {
		o.GradTop = DefaultGradient
	}
	if o.GradBottom == "" {
		o.GradBottom = DefaultGradient
	}
	if o.Format == "" {
		o.Format = string(raster.DefaultFormat)
	}
}

// Validate checks every field. It does not apply defaults.
func (o *Options) Validate() error {
	if err := errors.ValidateSlices(o.Slices); err != nil {
		return err
	}
	if err := errors.ValidateRotInc(o.RotInc); err != nil {
		return err
	}
	if err := errors.ValidateSquash(o.Squash); err != nil {
		return err
	}
	if err := errors.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if _, err := stack.ParseGradient(o.GradTop, o.GradBottom); err != nil {
		return err
	}
	_, err := raster.ParseFormat(o.Format)
	return err
}

// ValidateAndSetDefaults applies SetDefaults, then Validate.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Angles returns the angle sequence driving both sheets.
func (o *Options) Angles() []int {
	return stack.Angles(o.RotInc)
}

// workers returns the parallelism of per-angle builds.
func (o *Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// SheetKeyOpts returns the cache key options of the baked pixels.
func (o *Options) SheetKeyOpts() cache.SheetKeyOpts {
	return cache.SheetKeyOpts{
		Slices:      o.Slices,
		RotInc:      o.RotInc,
		VStep:       o.VStep,
		Squash:      o.Squash,
		ShadowAngle: o.ShadowAngle,
		ShadowStep:  o.ShadowStep,
		GradTop:     o.GradTop,
		GradBottom:  o.GradBottom,
		Format:      o.Format,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result describes a finished bake.
type Result struct {
	ObjectPath   string
	ShadowPath   string
	ManifestPath string // empty unless Options.Manifest

	Angles     []int
	CellWidth  int // object sheet cell width
	CellHeight int // object sheet cell height

	Stats    Stats
	CacheHit bool // sheets came from the cache; Load and Build were skipped
}

// Stats contains bake timings and sizes.
type Stats struct {
	Slices    int
	Depth     int
	LoadTime  time.Duration
	BuildTime time.Duration
	WriteTime time.Duration
}

// Frame holds the object and shadow canvases of one angle.
type Frame struct {
	Angle  int
	Object stack.Canvas
	Shadow stack.Canvas
}

// PreviewFrame is one angle's object merged over its shadow.
type PreviewFrame struct {
	Angle  int
	Canvas stack.Canvas
}
