package cli

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stakr/pkg/pipeline"
	"github.com/matzehuels/stakr/pkg/stack"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <source>",
		Short: "Show per-angle canvas sizes and anchors",
		Long: `Build every angle of a source without writing anything and print the
object and shadow canvas sizes and anchors. Useful for choosing squash,
v-step and shadow settings before baking.`,
		Args: cobra.ExactArgs(1),
	}

	flags := newOptionFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.resolve(cmd)
		if err != nil {
			return err
		}
		ctx := withLogger(cmd.Context(), c.Logger)
		return c.runInfo(ctx, args[0], opts)
	}

	return cmd
}

func (c *CLI) runInfo(ctx context.Context, src string, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(logger)
	s, err := stack.LoadFile(src, opts.Slices)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, logger)
	defer runner.Close()
	frames, err := runner.Frames(ctx, s, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d angles", len(frames)))

	sw, sh := s.SliceSize()
	printKeyValue("Source", src)
	printKeyValue("Slices", fmt.Sprintf("%d × %dx%d", len(s.Slices), sw, sh))
	printKeyValue("Depth", strconv.Itoa(s.Depth()))
	printNewline()
	fmt.Println(frameTable(frames).Render())
	return nil
}

// frameTable lays out one row per angle.
func frameTable(frames []pipeline.Frame) *table.Table {
	rows := make([][]string, 0, len(frames))
	for _, f := range frames {
		rows = append(rows, []string{
			fmt.Sprintf("%d°", f.Angle),
			sizeCell(f.Object.Size()),
			anchorCell(f.Object),
			sizeCell(f.Shadow.Size()),
			anchorCell(f.Shadow),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Angle", "Object", "Anchor", "Shadow", "Anchor").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 2 || col == 4:
				return lipgloss.NewStyle().Foreground(colorGray)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		})
}

func sizeCell(p image.Point) string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}

func anchorCell(c stack.Canvas) string {
	if !c.Anchored {
		return "—"
	}
	return fmt.Sprintf("(%d, %d)", c.Anchor.X, c.Anchor.Y)
}
