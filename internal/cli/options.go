package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/pipeline"
)

// optionFlags binds the bake parameters shared by bake, preview, info and
// serve to command flags.
type optionFlags struct {
	opts   pipeline.Options
	config string
}

// newOptionFlags registers the parameter flags on cmd, defaulting to the
// pipeline defaults.
func newOptionFlags(cmd *cobra.Command) *optionFlags {
	f := &optionFlags{opts: pipeline.DefaultOptions()}
	o := &f.opts

	cmd.Flags().StringVarP(&f.config, "config", "c", "", "config file (.toml, .yaml, .yml or .json)")
	cmd.Flags().IntVarP(&o.Slices, "slices", "n", 0, "number of slices in the source strip")
	cmd.Flags().IntVar(&o.RotInc, "rot-inc", o.RotInc, "rotation increment in degrees")
	cmd.Flags().IntVar(&o.VStep, "v-step", o.VStep, "vertical pixels between layers")
	cmd.Flags().Float64Var(&o.Squash, "squash", o.Squash, "vertical scale applied before rotation")
	cmd.Flags().Float64Var(&o.ShadowAngle, "shadow-angle", o.ShadowAngle, "shadow direction in degrees")
	cmd.Flags().Float64Var(&o.ShadowStep, "shadow-step", o.ShadowStep, "shadow displacement per layer in pixels")
	cmd.Flags().StringVar(&o.GradTop, "grad-top", o.GradTop, "tint of the top layer (#RRGGBB)")
	cmd.Flags().StringVar(&o.GradBottom, "grad-bottom", o.GradBottom, "tint of the bottom layer (#RRGGBB)")
	cmd.Flags().IntVarP(&o.Workers, "workers", "j", 0, "parallel angle builds (0 uses every CPU)")
	return f
}

// resolve returns the effective options: the config file, if any, with every
// explicitly set flag applied on top.
func (f *optionFlags) resolve(cmd *cobra.Command) (pipeline.Options, error) {
	if f.config == "" {
		return f.opts, nil
	}
	opts := pipeline.DefaultOptions()
	if err := loadConfig(f.config, &opts); err != nil {
		return pipeline.Options{}, err
	}
	overrideChanged(cmd, &opts, &f.opts)
	return opts, nil
}

// optionFields maps flag names to the option fields they set.
func optionFields(o *pipeline.Options) map[string]any {
	return map[string]any{
		"slices":       &o.Slices,
		"rot-inc":      &o.RotInc,
		"v-step":       &o.VStep,
		"squash":       &o.Squash,
		"shadow-angle": &o.ShadowAngle,
		"shadow-step":  &o.ShadowStep,
		"grad-top":     &o.GradTop,
		"grad-bottom":  &o.GradBottom,
		"workers":      &o.Workers,
		"format":       &o.Format,
		"manifest":     &o.Manifest,
		"refresh":      &o.Refresh,
	}
}

// overrideChanged copies the fields of flags set on the command line from
// src into dst.
func overrideChanged(cmd *cobra.Command, dst, src *pipeline.Options) {
	from := optionFields(src)
	for name, to := range optionFields(dst) {
		if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
			continue
		}
		switch p := to.(type) {
		case *int:
			*p = *from[name].(*int)
		case *float64:
			*p = *from[name].(*float64)
		case *string:
			*p = *from[name].(*string)
		case *bool:
			*p = *from[name].(*bool)
		}
	}
}

// loadConfig decodes a config file over opts. Keys missing from the file
// keep their current values.
func loadConfig(path string, opts *pipeline.Options) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeNotFound, err, "config %s not found", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, opts)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, opts)
	case ".json":
		err = json.Unmarshal(data, opts)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "parse config %s", path)
	}
	return nil
}
