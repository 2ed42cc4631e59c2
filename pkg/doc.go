// Package pkg provides the core libraries of stakr, a sprite-stack baker.
//
// # Overview
//
// A sprite stack is a pile of thin horizontal layers drawn from a strip of
// equally wide slices. Rotating every layer and drawing them a pixel apart
// fakes a 3D object with 2D sprites. Stakr pre-renders that effect for a set
// of angles into two sheets a game engine can sample by angle: the object
// sheet and its drop shadow sheet.
//
// # Architecture
//
// The data flow of a bake:
//
//	Slice strip (PNG, GIF, BMP, TIFF)
//	         ↓
//	    [stack] package (slice, rotate, stack and shadow each angle)
//	         ↓
//	    [sheet] package (assemble tiles, anchor merge, atlas manifest)
//	         ↓
//	    <stem>_obj.png, <stem>_shd.png, <stem>.json
//
// [pipeline] runs these steps for every angle in parallel and is shared by
// the CLI and the HTTP server.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, log.Default())
//	opts := pipeline.DefaultOptions()
//	opts.Slices = 16
//	res, err := runner.Bake(ctx, "tree.png", "sprites", opts)
//
// # Main Packages
//
// [raster] - Image codec and pixel operations: crop, nearest-neighbour resize
// and rotation, tint, silhouette, alpha compositing.
//
// [stack] - Slice loading, layer geometry, gradients, and the object and
// shadow compositors. Every build is a pure function of its inputs.
//
// [sheet] - Sprite sheet assembly, per-tile lookup, the anchor merge used
// by previews, and TexturePacker-style manifests.
//
// [pipeline] - Options, parallel per-angle builds, caching and atomic output.
//
// [cache] - Sheet cache with file and Redis backends.
//
// [server] - HTTP surface for bakes and previews.
//
// [errors] - Coded errors and option validation.
//
// [observability] - Hooks for bake, cache and HTTP events.
//
// [raster]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/raster
// [stack]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/stack
// [sheet]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/sheet
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stakr/pkg/observability
package pkg
