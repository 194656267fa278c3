// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Orchardsense

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/orchardsense/pomolog/pkg/pomona"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive TUI for record retrieval and the free-text channel",
	Long: `Interactive terminal UI for the probe.

Shows the fetch session state, the records retrieved so far, and a log of
classified inbound traffic. The input line at the bottom sends free-form
text to the probe.

Keys:
  ctrl+f  start a saved-data fetch
  enter   send the typed text
  ctrl+c  quit

Supports both serial and WebSocket connections.`,
	RunE: runTui,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// Traffic log entry
type trafficEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages
type tuiTickMsg time.Time

type tuiFrameMsg struct {
	frame []byte
}

type tuiConnLostMsg struct {
	err error
}

// TUI model
type tuiModel struct {
	conn     Connection
	connInfo string
	session  *pomona.Session
	stats    *pomona.Statistics

	trafficLog    []trafficEntry
	maxLogEntries int

	textInput textinput.Model

	width    int
	height   int
	quitting bool
	connLost bool
}

func initialTuiModel(conn Connection, connInfo string) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "text to probe"
	ti.CharLimit = 120
	ti.Width = 40
	ti.Focus()

	return tuiModel{
		conn:          conn,
		connInfo:      connInfo,
		session:       pomona.NewSession(connSender{conn}),
		stats:         pomona.NewStatistics(),
		trafficLog:    make([]trafficEntry, 0),
		maxLogEntries: 100,
		textInput:     ti,
		width:         80,
		height:        24,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(
		tuiTickCmd(),
		textinput.Blink,
	)
}

func tuiTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tuiTickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "ctrl+f":
			if err := m.session.Start(); err != nil {
				m.addLogEntry(fmt.Sprintf("fetch: %v", err), true)
			} else {
				m.addLogEntry("fetch started", false)
			}
			return m, nil

		case "enter":
			text := m.textInput.Value()
			data, err := pomona.EncodeText(text)
			if err != nil {
				return m, nil
			}
			if _, err := m.conn.Write(data); err != nil {
				m.addLogEntry(fmt.Sprintf("send failed: %v", err), true)
			} else {
				m.addLogEntry(fmt.Sprintf(">> %s", text), false)
				m.textInput.Reset()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tuiTickMsg:
		m.stats.CalculateRates()
		return m, tuiTickCmd()

	case tuiFrameMsg:
		m.processFrame(msg.frame)

	case tuiConnLostMsg:
		m.connLost = true
		m.session.Disconnect(msg.err)
		m.addLogEntry(fmt.Sprintf("connection lost: %v", msg.err), true)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// processFrame feeds one inbound frame through the session and logs it
func (m *tuiModel) processFrame(frame []byte) {
	before := m.session.Count()
	c, err := m.session.HandleFrame(frame)
	m.stats.Update(c.Kind, m.session.Count()-before, err)

	switch {
	case err != nil:
		m.addLogEntry(fmt.Sprintf("MALFORMED: %v", err), true)
	case c.Kind == pomona.FrameDataPage:
		m.addLogEntry(fmt.Sprintf("%s (total %d)",
			pomona.FormatClassification(c), m.session.Count()), false)
	case c.Kind == pomona.FrameRaw:
		m.addLogEntry(fmt.Sprintf("<< %s", c.Text), false)
	}
}

func (m *tuiModel) addLogEntry(message string, isError bool) {
	entry := trafficEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.trafficLog = append(m.trafficLog, entry)

	// Keep only last N entries
	if len(m.trafficLog) > m.maxLogEntries {
		m.trafficLog = m.trafficLog[len(m.trafficLog)-m.maxLogEntries:]
	}
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("POMOLOG"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf(
		"%s | ctrl+f fetch, enter send, ctrl+c quit", m.connInfo)))
	s.WriteString("\n\n")

	// Session status
	state := m.session.State()
	status := strings.Builder{}
	stateStr := valueStyle.Render(pomona.FormatState(state))
	if state == pomona.StateFailed {
		stateStr = errorStyle.Render(pomona.FormatState(state))
	}
	status.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Fetch:"), stateStr,
		labelStyle.Render("Records:"), valueStyle.Render(fmt.Sprintf("%d", m.session.Count())),
	))
	if state == pomona.StateComplete {
		status.WriteString(fmt.Sprintf("   %s %s",
			labelStyle.Render("Ended by:"),
			valueStyle.Render(pomona.FormatReason(m.session.Reason()))))
	}
	if err := m.session.Err(); err != nil {
		status.WriteString(fmt.Sprintf("   %s", errorStyle.Render(err.Error())))
	}
	if m.connLost {
		status.WriteString("   " + errorStyle.Render("CONNECTION LOST"))
	}
	status.WriteString(fmt.Sprintf("\n%s %s   %s %s",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.FrameRate)),
	))
	s.WriteString(boxStyle.Render(status.String()))
	s.WriteString("\n\n")

	// Latest records
	records := m.session.Records()
	recHeight := 8
	s.WriteString(labelStyle.Render("Records:"))
	s.WriteString("\n")
	recContent := strings.Builder{}
	if len(records) == 0 {
		recContent.WriteString(headerStyle.Render("  (none fetched yet)"))
	} else {
		start := len(records) - recHeight
		if start < 0 {
			start = 0
		}
		for _, r := range records[start:] {
			recContent.WriteString(pomona.FormatRecord(r))
			recContent.WriteString("\n")
		}
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(recContent.String()))
	s.WriteString("\n\n")

	// Traffic log
	s.WriteString(labelStyle.Render("Traffic:"))
	s.WriteString("\n")

	logHeight := m.height - recHeight - 16
	if logHeight < 4 {
		logHeight = 4
	}
	logContent := strings.Builder{}
	startIdx := len(m.trafficLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}
	if len(m.trafficLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no traffic yet)"))
	} else {
		for i := startIdx; i < len(m.trafficLog); i++ {
			entry := m.trafficLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render(entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					entry.message,
				))
			}
		}
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))
	s.WriteString("\n")

	// Input line
	s.WriteString(m.textInput.View())
	s.WriteString("\n")

	return s.String()
}

func runTui(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	m := initialTuiModel(conn, connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Reader goroutine feeds assembled frames into the TUI
	done := make(chan struct{})
	go func() {
		fr := newFrameReader(conn)
		for {
			frame, err := fr.ReadFrame()
			if err != nil {
				select {
				case <-done:
				default:
					p.Send(tuiConnLostMsg{err: err})
				}
				return
			}
			p.Send(tuiFrameMsg{frame: frame})
		}
	}()

	if _, err := p.Run(); err != nil {
		close(done)
		conn.Close()
		return fmt.Errorf("TUI error: %v", err)
	}

	close(done)
	conn.Close()
	return nil
}
