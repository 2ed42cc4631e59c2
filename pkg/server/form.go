package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/pipeline"
)

// optionsFromForm overlays form fields on base. Field names match the
// config file keys. Malformed numbers and booleans are PARSE errors.
func optionsFromForm(form url.Values, base pipeline.Options) (pipeline.Options, error) {
	opts := base
	ints := map[string]*int{
		"slices":  &opts.Slices,
		"rot_inc": &opts.RotInc,
		"v_step":  &opts.VStep,
		"workers": &opts.Workers,
	}
	floats := map[string]*float64{
		"squash":       &opts.Squash,
		"shadow_angle": &opts.ShadowAngle,
		"shadow_step":  &opts.ShadowStep,
	}
	strs := map[string]*string{
		"grad_top":    &opts.GradTop,
		"grad_bottom": &opts.GradBottom,
		"format":      &opts.Format,
	}
	bools := map[string]*bool{
		"manifest": &opts.Manifest,
		"refresh":  &opts.Refresh,
	}

	for key, dst := range ints {
		if v := form.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeParse, err, "%s: %q is not an integer", key, v)
			}
			*dst = n
		}
	}
	for key, dst := range floats {
		if v := form.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeParse, err, "%s: %q is not a number", key, v)
			}
			*dst = f
		}
	}
	for key, dst := range strs {
		if v := form.Get(key); v != "" {
			*dst = v
		}
	}
	for key, dst := range bools {
		if v := form.Get(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeParse, err, "%s: %q is not a boolean", key, v)
			}
			*dst = b
		}
	}
	return opts, nil
}
