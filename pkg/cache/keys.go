package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Keyer derives cache keys.
type Keyer interface {
	// SheetKey identifies the pair of sheets baked from one source with one
	// set of options. Callers append ":obj" or ":shd".
	SheetKey(sourceHash string, opts SheetKeyOpts) string
}

// SheetKeyOpts holds every option that changes baked pixels.
type SheetKeyOpts struct {
	Slices      int     `json:"slices"`
	RotInc      int     `json:"rot_inc"`
	VStep       int     `json:"v_step"`
	Squash      float64 `json:"squash"`
	ShadowAngle float64 `json:"shadow_angle"`
	ShadowStep  float64 `json:"shadow_step"`
	GradTop     string  `json:"grad_top"`
	GradBottom  string  `json:"grad_bottom"`
	Format      string  `json:"format"`
}

// DefaultKeyer produces "sheet:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SheetKey implements Keyer.
func (DefaultKeyer) SheetKey(sourceHash string, opts SheetKeyOpts) string {
	// "#ff0000" and "FF0000" are the same colour.
	opts.GradTop = normalizeHex(opts.GradTop)
	opts.GradBottom = normalizeHex(opts.GradBottom)
	return hashKey("sheet", sourceHash, opts)
}

func normalizeHex(s string) string {
	return strings.ToUpper(strings.TrimPrefix(s, "#"))
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
