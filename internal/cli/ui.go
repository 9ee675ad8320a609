package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/wiring/pkg/color"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for fatal diagnostics.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Diagnostics
// =============================================================================

// formatDiagnostic renders one diagnostic as "kind: message (line N)",
// yellow for warnings and red for errors.
func formatDiagnostic(d wiring.Diagnostic) string {
	msg := d.Message
	if d.Line > 0 {
		msg += StyleDim.Render(fmt.Sprintf(" (line %d)", d.Line))
	}
	kind := string(d.Kind) + ":"
	if d.Severity == wiring.SeverityError {
		return styleIconError.Render(iconError) + " " + StyleError.Render(kind) + " " + msg
	}
	return styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(kind) + " " + msg
}

// printDiagnostics prints every diagnostic in order.
func printDiagnostics(ds wiring.Diagnostics) {
	for _, d := range ds {
		fmt.Println(formatDiagnostic(d))
	}
}

// printSummary prints document statistics on a single line.
func printSummary(s wiring.Stats, diagnostics int, cached bool, showCache bool) {
	parts := []string{
		plural(s.Devices, "device"),
		plural(s.Connections, "connection"),
		plural(s.Wires, "wire"),
		plural(s.Groups, "group"),
	}
	if diagnostics > 0 {
		parts = append(parts, StyleWarning.Render(plural(diagnostics, "warning")))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	if showCache {
		status, style := iconFresh, styleComputed
		if cached {
			status, style = iconCached, styleCached
		}
		line += StyleDim.Render(" · ") + style.Render(status)
	}
	fmt.Println(line)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// colorTable lists the entries of t with a swatch of each display value.
func colorTable(t *color.Table) string {
	tbl := newTable("Code", "Name", "Value", "")
	for _, e := range t.Entries() {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(e.Value)).Render("   ")
		tbl.Row(e.ShortCode, e.LongName, e.Value, swatch)
	}
	return tbl.Render()
}

// pinoutTable lists the pins of d with their connection counts and colors.
func pinoutTable(d *wiring.Device) string {
	tbl := newTable("#", "Pin", "Connections", "Color", "")
	for i, pin := range d.Pins {
		code, _ := d.PinColor(pin)
		note := ""
		switch {
		case pin == "":
		case d.IsUnused(pin):
			note = "unused"
		case d.ConnectionCount(pin) == 0:
			note = StyleWarning.Render("unconnected")
		case d.ConnectionCount(pin) > 1:
			note = StyleWarning.Render("shared")
		}
		tbl.Row(strconv.Itoa(i+1), pin, strconv.Itoa(d.ConnectionCount(pin)), code, note)
	}
	return tbl.Render()
}

// deviceHeader describes a device on one line: name, type and info.
func deviceHeader(d *wiring.Device) string {
	parts := []string{StyleTitle.Render(d.Name)}
	if d.Type != "" {
		parts = append(parts, StyleValue.Render(d.Type))
	}
	if d.Info != "" {
		parts = append(parts, StyleDim.Render(d.Info))
	}
	if d.Placeholder {
		parts = append(parts, StyleWarning.Render("(undeclared)"))
	}
	return strings.Join(parts, "  ")
}
