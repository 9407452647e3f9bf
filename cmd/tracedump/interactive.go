package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumavm/stack-trace/capture"
	"github.com/lumavm/stack-trace/snapfile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	pcStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	asyncStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateSetSkip
)

type interactiveModel struct {
	err       error
	snapFile  string
	profFile  string
	capturer  *capture.Capturer
	snap      *snapfile.Snapshot
	trace     *capture.Trace
	skipInput textinput.Model
	skip      int
	selected  int
	state     modelState
}

func newInteractiveModel(snapFile, profFile string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "0"
	ti.Prompt = "skip frames: "
	ti.Width = 10
	return &interactiveModel{
		snapFile:  snapFile,
		profFile:  profFile,
		skipInput: ti,
		state:     stateBrowse,
	}
}

type loadedMsg struct {
	err      error
	capturer *capture.Capturer
	snap     *snapfile.Snapshot
}

type capturedMsg struct {
	err   error
	trace *capture.Trace
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	profile, err := loadProfile(m.profFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	snap, err := snapfile.LoadFile(m.snapFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{capturer: capture.New(profile), snap: snap}
}

func (m *interactiveModel) recapture() tea.Msg {
	tr, err := m.capturer.Capture(capture.Target{
		Name:   "interactive",
		Source: m.snap,
		Skip:   m.skip,
	})
	if err != nil {
		return capturedMsg{err: err}
	}
	return capturedMsg{trace: tr}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.trace != nil && m.selected < len(m.trace.Entries)-1 {
				m.selected++
			}

		case "s":
			if m.state == stateBrowse {
				m.state = stateSetSkip
				m.skipInput.SetValue(strconv.Itoa(m.skip))
				m.skipInput.Focus()
				return m, nil
			}

		case "r":
			if m.state == stateBrowse && m.capturer != nil {
				return m, m.recapture
			}

		case "enter":
			if m.state == stateSetSkip {
				if n, err := strconv.Atoi(m.skipInput.Value()); err == nil && n >= 0 {
					m.skip = n
				}
				m.skipInput.Blur()
				m.state = stateBrowse
				m.selected = 0
				return m, m.recapture
			}

		case "esc":
			if m.state == stateSetSkip {
				m.skipInput.Blur()
				m.state = stateBrowse
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.capturer = msg.capturer
		m.snap = msg.snap
		return m, m.recapture

	case capturedMsg:
		m.err = msg.err
		m.trace = msg.trace
		if m.trace != nil && m.selected >= len(m.trace.Entries) {
			m.selected = 0
		}
	}

	if m.state == stateSetSkip {
		var cmd tea.Cmd
		m.skipInput, cmd = m.skipInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.trace == nil {
		return "Loading snapshot..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Trace Browser"))
	b.WriteString(" ")
	b.WriteString(m.snapFile)
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Fingerprint %s", pcStyle.Render(m.trace.Fingerprint)))
	if m.trace.HasAsync {
		b.WriteString("  ")
		b.WriteString(asyncStyle.Render("[awaiter chain]"))
	}
	if m.trace.Truncated {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("[truncated]"))
	}
	b.WriteString("\n\n")

	for i := range m.trace.Entries {
		line := m.formatEntry(i)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.state {
	case stateSetSkip:
		b.WriteString(m.skipInput.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	default:
		b.WriteString(helpStyle.Render(
			fmt.Sprintf("skip=%d • ↑/↓ select • s skip • r recapture • q quit", m.skip)))
	}

	return b.String()
}

func (m *interactiveModel) formatEntry(i int) string {
	e := m.trace.Entries[i]
	line := frameStyle.Render(e.Code.Name()) + " " + pcStyle.Render(fmt.Sprintf("+0x%x", e.PC))
	if e.CatchError {
		line += " " + errorStyle.Render("(error handler)")
	}
	return fmt.Sprintf("#%-3d %s", i, line)
}

func runInteractive(snapFile, profFile string) error {
	p := tea.NewProgram(newInteractiveModel(snapFile, profFile), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
