package raster

import (
	"bytes"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/stakr/pkg/errors"
)

// Format is an output raster format.
type Format string

// Supported output formats. Every one of them keeps an alpha channel.
const (
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatPNG

var imagingFormats = map[Format]imaging.Format{
	FormatPNG:  imaging.PNG,
	FormatGIF:  imaging.GIF,
	FormatBMP:  imaging.BMP,
	FormatTIFF: imaging.TIFF,
}

// Ext returns the file extension for the format, including the dot (".png").
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat resolves a format name or extension ("png", ".PNG", "tif").
func ParseFormat(name string) (Format, error) {
	s := strings.ToLower(strings.TrimPrefix(name, "."))
	switch s {
	case "":
		return DefaultFormat, nil
	case "tif":
		s = "tiff"
	case "jpg", "jpeg":
		return "", errors.New(errors.ErrCodeInvalidFormat, "format %q has no alpha channel", name)
	}
	f := Format(s)
	if _, ok := imagingFormats[f]; !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (must be one of: png, gif, bmp, tiff)", name)
	}
	return f, nil
}

// FormatFromName resolves the format from a file name's extension.
func FormatFromName(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Decode reads any raster format imaging understands and converts it to NRGBA.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(false))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode image")
	}
	return imaging.Clone(img), nil
}

// Open decodes the raster file at path.
func Open(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "open %s", path)
	}
	return imaging.Clone(img), nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	imf, ok := imagingFormats[f]
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	if err := imaging.Encode(w, img, imf); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode %s", f)
	}
	return nil
}

// EncodeBytes encodes img into memory.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
