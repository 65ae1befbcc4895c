package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listDefaultStyle  = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// PrinterListModel - Interactive printer selection
// =============================================================================

// PrinterListModel is the bubbletea model for picking a print queue.
type PrinterListModel struct {
	Printers []string
	Default  string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewPrinterListModel creates a picker with the cursor on the default queue.
func NewPrinterListModel(printers []string, def string) PrinterListModel {
	m := PrinterListModel{Printers: printers, Default: def, Height: 15}
	for i, p := range printers {
		if p == def {
			m.Cursor = i
			break
		}
	}
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m PrinterListModel) Init() tea.Cmd {
	return nil
}

func (m PrinterListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Printers)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Printers) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Printers[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PrinterListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Printer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Printers))
	for i := m.Offset; i < end; i++ {
		name := m.Printers[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + name
		if name == m.Default {
			line += " " + listDefaultStyle.Render("(default)")
		}

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Printers))))
	return b.String()
}

// pickPrinter runs the picker on out and returns the chosen queue, or ""
// when the user quit without choosing.
func pickPrinter(printers []string, def string, in io.Reader, out io.Writer) (string, error) {
	final, err := tea.NewProgram(NewPrinterListModel(printers, def),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	if err != nil {
		return "", err
	}
	return final.(PrinterListModel).Selected, nil
}
