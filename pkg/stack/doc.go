// Package stack builds per-angle canvases from a sliced pixel-art source.
//
// A source sheet is a horizontal strip of equal-width slices, each one a
// horizontal cross-section of an object. Slice 0 is a reference: it fixes
// the layer size after squash and is never drawn. Slices 1..N-1 are the
// rendered layers, bottom to top, so a stack of N slices has depth N-1.
//
// # Object canvases
//
// [BuildObject] squashes every layer vertically, rotates it about its centre
// and stacks the results |VStep| pixels apart, each layer tinted by a
// bottom-to-top [Gradient]. Because rotation expands each layer to its
// bounding box, layers are lowered by [BaselineDrop] so they sit on a common
// ground line.
//
// # Shadow canvases
//
// [BuildShadow] repeats the same squash and rotation, turns each layer into
// a black silhouette and steps it along a [ShadowVector]. Silhouettes
// overwrite each other instead of blending, so the shadow has a uniform
// density however many layers overlap.
//
// # Anchors
//
// Both builders record the ground-contact point of the bottom layer as the
// canvas [Canvas.Anchor]. Object and shadow canvases for the same angle can
// then be aligned by anchor regardless of their different padding.
package stack
