package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wiring/pkg/pipeline"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand opens the interactive device browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:               "inspect [harness.yaml]",
		Short:             "Browse devices and pinouts interactively",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHarness,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&flags.palette, "palette", "", "color table file (TOML)")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, opts pipeline.Options) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	res, err := pipeline.NewRunner(nil, nil, c.Logger).Build(ctx, data, opts)
	if err != nil {
		return reportBuildError(os.Stdout, err)
	}
	if res.Document.DeviceCount() == 0 {
		printInfo("No devices declared")
		return nil
	}

	_, err = tea.NewProgram(NewDeviceListModel(res), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// DeviceListModel - Interactive device browser
// =============================================================================

// DeviceListModel is the bubbletea model for browsing the devices of a
// built document. Enter toggles the pinout of the selected device.
type DeviceListModel struct {
	Devices     []*wiring.Device
	Diagnostics wiring.Diagnostics
	Cursor      int
	Height      int
	Offset      int
	// Detail is set while the pinout of the selected device is shown.
	Detail bool
}

// NewDeviceListModel creates a browser over the devices of res.
func NewDeviceListModel(res *wiring.Result) DeviceListModel {
	return DeviceListModel{
		Devices:     res.Document.Devices(),
		Diagnostics: res.Diagnostics,
		Height:      15,
	}
}

func (m DeviceListModel) Init() tea.Cmd {
	return nil
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			if m.Detail {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Devices)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m DeviceListModel) View() string {
	if len(m.Devices) == 0 {
		return listDimStyle.Render("no devices") + "\n"
	}
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Devices"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ pinout  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Devices))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Devices[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		warnings := ""
		if n := len(m.Diagnostics.ForDevice(d.Name)); n > 0 {
			warnings = strconv.Itoa(n)
		}
		rows = append(rows, []string{
			cursor, d.Name, d.Type,
			strconv.Itoa(len(d.Pins)),
			strconv.Itoa(d.ConnectionCountTotal()),
			warnings,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("", "Device", "Type", "Pins", "Links", "Warnings").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Devices) {
				return lipgloss.NewStyle()
			}
			d := m.Devices[idx]
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			switch {
			case col == 5:
				return base.Foreground(colorYellow)
			case d.Placeholder || d.IsUnconnected():
				return base.Foreground(colorDim)
			case idx == m.Cursor:
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Devices))))

	return b.String()
}

func (m DeviceListModel) detailView() string {
	d := m.Devices[m.Cursor]

	var b strings.Builder
	b.WriteString(deviceHeader(d))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	if len(d.Pins) > 0 {
		b.WriteString(pinoutTable(d))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("no pins, %s", plural(d.ConnectionCountTotal(), "link"))))
	}
	b.WriteString("\n")

	if ds := m.Diagnostics.ForDevice(d.Name); len(ds) > 0 {
		b.WriteString("\n")
		for _, diag := range ds {
			b.WriteString(formatDiagnostic(diag))
			b.WriteString("\n")
		}
	}
	return b.String()
}
