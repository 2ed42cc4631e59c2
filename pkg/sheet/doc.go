// Package sheet tiles per-angle canvases into sprite sheets.
//
// A [Sheet] is one row of equally sized cells, one per angle, in angle order.
// Each canvas sits bottom-aligned and horizontally centred in its cell, so
// cell n always spans columns [n·CellWidth, (n+1)·CellWidth) and a game can
// cut frames by arithmetic alone. Object and shadow canvases are assembled
// into separate sheets; [Merge] recombines one pair for preview by lining up
// their anchors.
//
// [Sheet.Page] describes a sheet as a TexturePacker page so that engines which
// load TexturePacker atlases can consume baked sheets directly.
package sheet
