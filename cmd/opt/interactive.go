package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/ssair/diag"
	"github.com/wippyai/ssair/inline"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Strikethrough(true)

	changedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type funcDiff struct {
	name    string
	before  string
	after   string
	removed bool
}

func (d funcDiff) changed() bool { return d.removed || d.before != d.after }

type interactiveModel struct {
	err      error
	filename string
	diffs    []funcDiff
	diags    []diag.Diagnostic
	stats    inline.Stats
	filter   textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateList modelState = iota
	stateView
)

func newInteractiveModel(filename string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter functions"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{
		filename: filename,
		filter:   ti,
	}
}

type optimizedMsg struct {
	err   error
	diffs []funcDiff
	diags []diag.Diagnostic
	stats inline.Stats
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.optimize
}

func (m *interactiveModel) optimize() tea.Msg {
	source, err := os.ReadFile(m.filename)
	if err != nil {
		return optimizedMsg{err: err}
	}
	mod, err := irtext.Parse(m.filename, string(source))
	if err != nil {
		return optimizedMsg{err: err}
	}

	before := make(map[string]string)
	var order []string
	for _, f := range mod.Functions() {
		before[f.Name] = ir.PrintFunction(f)
		order = append(order, f.Name)
	}

	diags := diag.NewEngine()
	stats := inline.NewPass(diags).Run(mod)

	var diffs []funcDiff
	for _, name := range order {
		d := funcDiff{name: name, before: before[name]}
		if f := mod.FindFunction(name); f != nil {
			d.after = ir.PrintFunction(f)
		} else {
			d.removed = true
		}
		diffs = append(diffs, d)
	}
	return optimizedMsg{diffs: diffs, diags: diags.Diagnostics(), stats: stats}
}

func (m *interactiveModel) visible() []funcDiff {
	filter := strings.ToLower(m.filter.Value())
	if filter == "" {
		return m.diffs
	}
	var out []funcDiff
	for _, d := range m.diffs {
		if strings.Contains(strings.ToLower(d.name), filter) {
			out = append(out, d)
		}
	}
	return out
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}

		case "down":
			if m.state == stateList && m.selected < len(m.visible())-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateList && len(m.visible()) > 0 {
				m.state = stateView
			}

		case "esc":
			switch m.state {
			case stateView:
				m.state = stateList
			case stateList:
				if m.filter.Value() != "" {
					m.filter.SetValue("")
					m.selected = 0
				} else {
					return m, tea.Quit
				}
			}
		}

	case optimizedMsg:
		m.err = msg.err
		m.diffs = msg.diffs
		m.diags = msg.diags
		m.stats = msg.stats
	}

	if m.state == stateList {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if vis := m.visible(); m.selected >= len(vis) {
			m.selected = 0
		}
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			helpStyle.Render("ctrl+c quit")
	}
	if m.diffs == nil {
		return "Optimizing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("IR Optimizer"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("  ")
	b.WriteString(statsStyle.Render(fmt.Sprintf("inlined %d, devirtualized %d, removed %d",
		m.stats.Inlined, m.stats.Devirtualized, m.stats.Removed)))
	b.WriteString("\n\n")

	for _, d := range m.diags {
		b.WriteString(errStyle.Render(fmt.Sprintf("%s: %s: %s", d.Loc, d.Severity, d.Message)))
		b.WriteString("\n")
	}
	if len(m.diags) > 0 {
		b.WriteString("\n")
	}

	switch m.state {
	case stateList:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, d := range m.visible() {
			cursor := "  "
			label := m.formatFunc(d)
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + d.name))
				b.WriteString(" " + m.annotation(d))
			} else {
				b.WriteString(cursor + label)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter view • esc clear/quit"))

	case stateView:
		d := m.visible()[m.selected]
		b.WriteString(headerStyle.Render("── before ──"))
		b.WriteString("\n")
		b.WriteString(d.before)
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("── after ──"))
		b.WriteString("\n")
		if d.removed {
			b.WriteString(removedStyle.Render("(removed: no remaining references)"))
			b.WriteString("\n")
		} else {
			b.WriteString(d.after)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • ctrl+c quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(d funcDiff) string {
	return funcStyle.Render(d.name) + " " + m.annotation(d)
}

func (m *interactiveModel) annotation(d funcDiff) string {
	switch {
	case d.removed:
		return removedStyle.Render("removed")
	case d.changed():
		return changedStyle.Render("changed")
	}
	return helpStyle.Render("unchanged")
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
