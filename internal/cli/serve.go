package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stakr/pkg/cache"
	"github.com/matzehuels/stakr/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bakes and previews over HTTP",
		Long: `Serve bakes and previews over HTTP.

  POST /v1/bakes              multipart "source" file plus option fields
  GET  /v1/bakes/{id}/{kind}  kind is obj, shd or manifest
  POST /v1/preview?index=n    PNG of one merged frame

Option fields use the config file keys (slices, rot_inc, v_step, ...). The
parameter flags of this command set the defaults for requests that omit them.`,
		Args: cobra.NoArgs,
	}

	flags := newOptionFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVarP(&outDir, "out", "o", "bakes", "root directory of baked outputs")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defaults, err := flags.resolve(cmd)
		if err != nil {
			return err
		}
		defaults.Manifest = true
		return c.runServe(withLogger(cmd.Context(), c.Logger), addr, outDir, server.Config{
			OutDir:   outDir,
			Defaults: defaults,
		})
	}

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, outDir string, cfg server.Config) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, cache.NewScopedKeyer(nil, "serve:"))
	if err != nil {
		return err
	}
	defer runner.Close()

	cfg.Logger = logger
	srv := server.New(runner, cfg)

	printInfo("Serving on %s", styleLink.Render("http://"+displayAddr(addr)))
	printDetail("Outputs: %s", outDir)

	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		printSuccess("Server stopped")
		return nil
	}
	return err
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
