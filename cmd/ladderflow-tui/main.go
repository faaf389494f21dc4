// ladderflow-tui is a terminal browser for one analysis pass: flowchart
// markup, node metadata, device cross-reference and diagnostics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/logging"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#005FAF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	summaryBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	summaryView view = iota
	diagramView
	nodesView
	devicesView
	diagnosticsView
	viewCount
)

var viewNames = []string{"Summary", "Diagram", "Nodes", "Devices", "Diagnostics"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "scroll down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type model struct {
	actx        *analysis.Context
	artifact    string
	currentView view
	diagram     viewport.Model
	nodeTable   table.Model
	deviceTable table.Model
	diagTable   table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
}

func initialModel(actx *analysis.Context, artifact string) model {
	vp := viewport.New(80, 20)
	vp.SetContent(actx.Diagram().Markup)

	nodeTable := newTable([]table.Column{
		{Title: "ID", Width: 10},
		{Title: "Kind", Width: 10},
		{Title: "Net", Width: 5},
		{Title: "Label", Width: 30},
		{Title: "Devices", Width: 24},
	}, nodeRows(actx))

	deviceTable := newTable([]table.Column{
		{Title: "Device", Width: 10},
		{Title: "Networks", Width: 50},
	}, deviceRows(actx))

	diagTable := newTable([]table.Column{
		{Title: "Severity", Width: 10},
		{Title: "Kind", Width: 24},
		{Title: "Net", Width: 5},
		{Title: "Message", Width: 50},
	}, diagRows(actx))

	return model{
		actx:        actx,
		artifact:    artifact,
		currentView: summaryView,
		diagram:     vp,
		nodeTable:   nodeTable,
		deviceTable: deviceTable,
		diagTable:   diagTable,
		help:        help.New(),
		keys:        keys,
	}
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#005FAF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func nodeRows(actx *analysis.Context) []table.Row {
	var rows []table.Row
	for _, meta := range actx.Diagram().Nodes {
		rows = append(rows, table.Row{
			meta.ID,
			meta.Kind,
			strconv.Itoa(meta.Network),
			meta.Label,
			strings.Join(meta.Devices, " "),
		})
	}
	return rows
}

func deviceRows(actx *analysis.Context) []table.Row {
	var rows []table.Row
	for _, dev := range actx.Devices() {
		ids, _ := actx.DeviceNetworks(dev.Address())
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		rows = append(rows, table.Row{dev.Address(), strings.Join(parts, " ")})
	}
	return rows
}

func diagRows(actx *analysis.Context) []table.Row {
	var rows []table.Row
	for _, d := range actx.Diagnostics() {
		rows = append(rows, table.Row{
			d.Severity.String(),
			string(d.Kind),
			strconv.Itoa(d.Network),
			d.Message,
		})
	}
	return rows
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.diagram.Width = msg.Width - 4
		m.diagram.Height = msg.Height - 8

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
		}
	}

	switch m.currentView {
	case diagramView:
		m.diagram, cmd = m.diagram.Update(msg)
	case nodesView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
	case devicesView:
		m.deviceTable, cmd = m.deviceTable.Update(msg)
	case diagnosticsView:
		m.diagTable, cmd = m.diagTable.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("LadderFlow — " + m.artifact))
	b.WriteString("\n")

	var tabs []string
	for i, name := range viewNames {
		if view(i) == m.currentView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	switch m.currentView {
	case summaryView:
		b.WriteString(contentStyle.Render(m.summaryBox()))
	case diagramView:
		b.WriteString(contentStyle.Render(m.diagram.View()))
	case nodesView:
		b.WriteString(contentStyle.Render(m.nodeTable.View()))
	case devicesView:
		b.WriteString(contentStyle.Render(m.deviceTable.View()))
	case diagnosticsView:
		if len(m.actx.Diagnostics()) == 0 {
			b.WriteString(contentStyle.Render("no diagnostics"))
		} else {
			b.WriteString(contentStyle.Render(m.diagTable.View()))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m model) summaryBox() string {
	return summaryBoxStyle.Render(fmt.Sprintf(
		"Pass       %s\nCreated    %s\nNetworks   %d\nNodes      %d\nDevices    %d\nDiagnostics %d",
		m.actx.PassID(),
		m.actx.CreatedAt().Format(time.RFC3339),
		m.actx.NetworkCount(),
		len(m.actx.Graph().Nodes),
		len(m.actx.Devices()),
		len(m.actx.Diagnostics()),
	))
}

func main() {
	workers := flag.Int("workers", 4, "Decode parallelism")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ladderflow-tui [flags] <artifact>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("reading %s: %v", path, err)))
		os.Exit(1)
	}

	analyzer := analysis.New(analysis.Options{Workers: *workers, Logger: logging.NewNopLogger()})
	actx, err := analyzer.Run(context.Background(), data)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("analysis failed: %v", err)))
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(actx, path), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("tui failed: %v", err)))
		os.Exit(1)
	}
}
