package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stakr/pkg/pipeline"
)

var (
	colorCyan   = lipgloss.Color("36")  // angles, titles
	colorGreen  = lipgloss.Color("35")  // success, cache hits
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links, commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleWarning.Render(iconWarning) + " " + styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under the previous message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + styleValue.Render(value))
}

// printBakeResult prints the summary line of a bake followed by every file
// it wrote.
func printBakeResult(res *pipeline.Result) {
	status := styleDim.Render("fresh")
	if res.CacheHit {
		status = styleCached.Render("cached")
	}
	fmt.Println("  " + styleDim.Render(bakeSummary(res)+" · ") + status)

	for _, path := range bakeOutputs(res) {
		fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
	}
}

// bakeSummary describes a bake as "<slices> slices · <angles> angles · <w>x<h> cells".
func bakeSummary(res *pipeline.Result) string {
	return strings.Join([]string{
		fmt.Sprintf("%d slices", res.Stats.Slices),
		fmt.Sprintf("%d angles", len(res.Angles)),
		fmt.Sprintf("%dx%d cells", res.CellWidth, res.CellHeight),
	}, " · ")
}

// bakeOutputs lists the written files: object sheet, shadow sheet, then the
// manifest when one was requested.
func bakeOutputs(res *pipeline.Result) []string {
	out := []string{res.ObjectPath, res.ShadowPath}
	if res.ManifestPath != "" {
		out = append(out, res.ManifestPath)
	}
	return out
}

func printNextStep(description, cmd string) {
	fmt.Println(styleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
