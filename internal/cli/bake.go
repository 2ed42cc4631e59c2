package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stakr/pkg/observability"
	"github.com/matzehuels/stakr/pkg/pipeline"
)

// bakeCommand creates the bake command.
func (c *CLI) bakeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bake <source>",
		Short: "Bake the object and shadow sheets of a slice strip",
		Long: `Bake the object and shadow sprite sheets of a slice strip.

The source is a horizontal strip of equally wide layer slices, bottom layer
first. For every angle in 0, rot-inc, 2*rot-inc, ... below 360 the layers are
rotated and stacked, and their drop shadow is drawn. The results are written
as <stem>_obj.<ext> and <stem>_shd.<ext>, one tile per angle.`,
		Example: `  stakr bake tree.png --slices 16
  stakr bake tree.png -n 16 --rot-inc 10 --grad-bottom "#404040" -o sprites/
  stakr bake tree.png --config tree.toml --manifest`,
		Args: cobra.ExactArgs(1),
	}

	flags := newOptionFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&flags.opts.Format, "format", "f", flags.opts.Format, "output format: png (default), gif, bmp, tiff")
	cmd.Flags().BoolVar(&flags.opts.Manifest, "manifest", false, "also write a <stem>.json texture atlas")
	cmd.Flags().BoolVar(&flags.opts.Refresh, "refresh", false, "ignore cached sheets")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.resolve(cmd)
		if err != nil {
			return err
		}
		ctx := withLogger(cmd.Context(), c.Logger)
		return c.runBake(ctx, args[0], output, opts)
	}

	return cmd
}

func (c *CLI) runBake(ctx context.Context, src, outDir string, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	name := filepath.Base(src)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Baking %s...", name))
	progress := &spinnerProgress{spinner: spinner, name: name}
	observability.SetBakeHooks(progress)
	defer observability.SetBakeHooks(observability.NoopBakeHooks{})

	spinner.Start()
	res, err := runner.Bake(ctx, src, outDir, opts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Failed to bake %s", name))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Baked %s", name))

	printBakeResult(res)
	logger.Debug("bake timings",
		"load", res.Stats.LoadTime,
		"build", res.Stats.BuildTime,
		"write", res.Stats.WriteTime)

	printNewline()
	printNextStep("Preview it", fmt.Sprintf("stakr preview %s --slices %d", src, opts.Slices))
	return nil
}

// spinnerProgress reports per-angle progress on a spinner.
type spinnerProgress struct {
	observability.NoopBakeHooks

	spinner *Spinner
	name    string
	total   atomic.Int32
	done    atomic.Int32
}

func (p *spinnerProgress) OnBakeStart(_ context.Context, _ string, angles int) {
	p.total.Store(int32(angles))
	p.done.Store(0)
}

func (p *spinnerProgress) OnAngleComplete(_ context.Context, _ int, _ time.Duration, err error) {
	if err != nil {
		return
	}
	n := p.done.Add(1)
	p.spinner.SetMessage(fmt.Sprintf("Baking %s · %d/%d angles", p.name, n, p.total.Load()))
}
