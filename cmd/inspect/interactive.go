package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	reportStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateEditSpec modelState = iota
	stateShowReport
)

const (
	fieldElem = iota
	fieldShape
	fieldOrder
	fieldExtents
	fieldCount
)

type interactiveModel struct {
	err      error
	report   string
	inputs   []textinput.Model
	focusIdx int
	emit     bool
	state    modelState
}

func newInteractiveModel() *interactiveModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Width = 30
		inputs[i] = ti
	}
	inputs[fieldElem].Prompt = "element: "
	inputs[fieldElem].SetValue("float64")
	inputs[fieldShape].Prompt = "shape:   "
	inputs[fieldShape].Placeholder = "2x3 or Nx3"
	inputs[fieldOrder].Prompt = "order:   "
	inputs[fieldOrder].SetValue("C")
	inputs[fieldExtents].Prompt = "extents: "
	inputs[fieldExtents].Placeholder = "for dynamic dims, e.g. 5"
	inputs[fieldShape].Focus()

	return &interactiveModel{
		inputs:   inputs,
		focusIdx: fieldShape,
		state:    stateEditSpec,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateShowReport {
				return m, tea.Quit
			}

		case "tab":
			if m.state == stateEditSpec {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "shift+tab":
			if m.state == stateEditSpec {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + len(m.inputs) - 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "ctrl+e":
			m.emit = !m.emit
			return m, nil

		case "enter":
			switch m.state {
			case stateEditSpec:
				m.report, m.err = buildReport(
					m.inputs[fieldElem].Value(),
					m.inputs[fieldShape].Value(),
					m.inputs[fieldOrder].Value(),
					m.inputs[fieldExtents].Value(),
					m.emit,
				)
				m.state = stateShowReport
			case stateShowReport:
				m.state = stateEditSpec
				m.report = ""
				m.err = nil
			}
			return m, nil

		case "esc":
			if m.state == stateShowReport {
				m.state = stateEditSpec
				m.report = ""
				m.err = nil
				return m, nil
			}
		}
	}

	if m.state == stateEditSpec {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Inspector"))
	b.WriteString("\n\n")

	switch m.state {
	case stateEditSpec:
		b.WriteString("Describe an array type:\n\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		emitState := "off"
		if m.emit {
			emitState = "on"
		}
		b.WriteString(labelStyle.Render("C fragment: " + emitState))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("tab next field • ctrl+e toggle C fragment • enter inspect • ctrl+c quit"))

	case stateShowReport:
		if m.err != nil {
			b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		} else {
			b.WriteString(reportStyle.Render(m.report))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
