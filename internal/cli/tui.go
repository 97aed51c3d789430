package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tavola/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FieldPickerModel - Interactive caption field selection
// =============================================================================

// FieldPickerModel is the bubbletea model for choosing which metadata
// columns appear in captions. Column order is kept in the result.
type FieldPickerModel struct {
	Fields   []string
	Checked  []bool
	Cursor   int
	Offset   int
	Height   int
	Done     bool
	Aborted  bool
	Selected []string
}

// NewFieldPickerModel creates a picker over fields with preselected ones
// already checked.
func NewFieldPickerModel(fields, preselected []string) FieldPickerModel {
	checked := make([]bool, len(fields))
	for i, f := range fields {
		checked[i] = slices.Contains(preselected, f)
	}
	return FieldPickerModel{Fields: fields, Checked: checked, Height: 15}
}

func (m FieldPickerModel) Init() tea.Cmd {
	return nil
}

func (m FieldPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Fields)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Checked) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := !slices.Contains(m.Checked, false)
			for i := range m.Checked {
				m.Checked[i] = !all
			}
		case "enter":
			m.Selected = m.Selected[:0]
			for i, f := range m.Fields {
				if m.Checked[i] {
					m.Selected = append(m.Selected, f)
				}
			}
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-6)
	}
	return m, nil
}

func (m FieldPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Caption Fields"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Fields))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = listCheckedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, m.Fields[i])

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.Checked[i]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d selected", m.Cursor+1, len(m.Fields), m.count())))
	return b.String()
}

func (m FieldPickerModel) count() int {
	n := 0
	for _, c := range m.Checked {
		if c {
			n++
		}
	}
	return n
}

// pickFields runs the picker on the terminal and returns the chosen fields.
func pickFields(ctx context.Context, fields, preselected []string) ([]string, error) {
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "the metadata table has no columns to pick from")
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "field picking needs an interactive terminal; use --caption-fields instead")
	}

	final, err := tea.NewProgram(NewFieldPickerModel(fields, preselected), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("field picker: %w", err)
	}
	m := final.(FieldPickerModel)
	if m.Aborted || !m.Done {
		return nil, context.Canceled
	}
	return m.Selected, nil
}
