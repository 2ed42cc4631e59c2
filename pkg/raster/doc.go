// Package raster is the pixel-level toolkit used by the compositing packages.
//
// It wraps github.com/disintegration/imaging for decoding, encoding, cropping,
// resizing and per-pixel adjustment, and golang.org/x/image/draw for affine
// rotation and masked pastes. All images are *image.NRGBA (straight alpha)
// anchored at the origin.
//
// # Resampling
//
// Every geometric operation samples with nearest neighbour. Pixel-art sources
// have hard edges, and interpolating filters would introduce semi-transparent
// fringe pixels whose shape varies by angle. That fringe would leak into
// shadow silhouettes and gradient tints, so it is never produced here.
//
// # Rotation
//
// [RotateExpand] rotates counter-clockwise about the image centre and grows
// the canvas to the rotated bounding box. Quarter turns use lossless
// transposes; other angles use an affine transform whose output size is
// ceil(max corner) - floor(min corner) over the rotated corners.
//
// # Compositing
//
//   - [Over]: Porter-Duff source-over, used to stack tinted layers
//   - [PasteMasked]: overwrite masked by the source alpha, used for silhouettes
//   - [Paste]: plain copy, used to tile sheets
//
// Functions return the resulting image; callers must use the return value.
package raster
