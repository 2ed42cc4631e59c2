package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stakr/pkg/pipeline"
	"github.com/matzehuels/stakr/pkg/stack"
)

// Preview layout
const (
	previewChromeRows = 5 // title, hints and footer lines around the frame
	defaultTermWidth  = 80
	defaultTermHeight = 24
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <source>",
		Short: "Cycle through the baked frames in the terminal",
		Long: `Show each angle's object merged over its shadow, as a game would draw
them, in the terminal. Use the arrow keys to rotate and q to quit.`,
		Args: cobra.ExactArgs(1),
	}

	flags := newOptionFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.resolve(cmd)
		if err != nil {
			return err
		}
		ctx := withLogger(cmd.Context(), c.Logger)
		return c.runPreview(ctx, args[0], opts)
	}

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, src string, opts pipeline.Options) error {
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building frames...")
	spinner.Start()
	frames, err := runner.PreviewFile(ctx, src, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	p := tea.NewProgram(newPreviewSession(src, frames), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// previewSession - Interactive frame viewer
// =============================================================================

// previewSession holds the frames being shown and the current position.
// Every update returns a new value; nothing is shared with the pipeline.
type previewSession struct {
	source string
	frames []pipeline.PreviewFrame
	index  int
	width  int // terminal columns
	height int // terminal rows
}

func newPreviewSession(source string, frames []pipeline.PreviewFrame) previewSession {
	return previewSession{
		source: source,
		frames: frames,
		width:  defaultTermWidth,
		height: defaultTermHeight,
	}
}

// step moves the index by delta, wrapping around the frame count.
func (s previewSession) step(delta int) previewSession {
	n := len(s.frames)
	if n == 0 {
		return s
	}
	s.index = ((s.index+delta)%n + n) % n
	return s
}

// current returns the frame at the index.
func (s previewSession) current() pipeline.PreviewFrame {
	return s.frames[s.index]
}

func (s previewSession) Init() tea.Cmd {
	return nil
}

func (s previewSession) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return s, tea.Quit
		case "right", "l", " ":
			return s.step(1), nil
		case "left", "h":
			return s.step(-1), nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s previewSession) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(s.source))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("←/→ rotate  q quit"))
	b.WriteString("\n\n")

	if len(s.frames) == 0 {
		b.WriteString(styleDim.Render("no frames"))
		return b.String()
	}

	f := s.current()
	rows := s.height - previewChromeRows
	if rows < 1 {
		rows = 1
	}
	b.WriteString(renderHalfBlocks(f.Canvas.Image, s.width, rows))
	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("  %d° · [%d/%d]", f.Angle, s.index+1, len(s.frames))))

	return b.String()
}

// =============================================================================
// Pixel Rendering
// =============================================================================

// renderHalfBlocks draws img with one character per two vertically adjacent
// pixels, scaled down to fit cols×rows cells. Transparent pixels stay blank.
func renderHalfBlocks(img *image.NRGBA, cols, rows int) string {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	if sz := img.Bounds().Size(); sz.X > cols || sz.Y > 2*rows {
		img = imaging.Fit(img, cols, 2*rows, imaging.NearestNeighbor)
	}

	bounds := img.Bounds()
	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := img.NRGBAAt(x, y)
			bottom := color.NRGBA{}
			if y+1 < bounds.Max.Y {
				bottom = img.NRGBAAt(x, y+1)
			}
			b.WriteString(halfBlock(top, bottom))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func halfBlock(top, bottom color.NRGBA) string {
	topOn, bottomOn := top.A >= 128, bottom.A >= 128
	switch {
	case topOn && bottomOn:
		return lipgloss.NewStyle().Foreground(termColor(top)).Background(termColor(bottom)).Render("▀")
	case topOn:
		return lipgloss.NewStyle().Foreground(termColor(top)).Render("▀")
	case bottomOn:
		return lipgloss.NewStyle().Foreground(termColor(bottom)).Render("▄")
	default:
		return " "
	}
}

func termColor(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(stack.Hex(stack.RGB{R: c.R, G: c.G, B: c.B}))
}
