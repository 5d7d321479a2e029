package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/discardbot/internal/simulator"
)

type progressMsg simulator.Progress

type matchDoneMsg struct{}

// progressModel renders a live progress bar while a match runs.
type progressModel struct {
	bar     progress.Model
	names   [2]string
	current simulator.Progress
	cancel  func()
	aborted bool
}

func newProgressModel(names [2]string, hands int, cancel func()) progressModel {
	return progressModel{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		names:   names,
		current: simulator.Progress{Hands: hands},
		cancel:  cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-30, 60))
	case progressMsg:
		m.current = simulator.Progress(msg)
	case matchDoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	pct := 0.0
	if m.current.Hands > 0 {
		pct = float64(m.current.Hand) / float64(m.current.Hands)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s vs %s", m.names[0], m.names[1])))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(pct))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", m.current.Hand, m.current.Hands)))
	b.WriteString("\n")
	for i, name := range m.names {
		fmt.Fprintf(&b, "%-10s %s\n", name, signed("%+.0f", m.current.Totals[i]))
	}
	if m.aborted {
		b.WriteString(lossStyle.Render("aborting..."))
		b.WriteString("\n")
	}
	return b.String()
}
