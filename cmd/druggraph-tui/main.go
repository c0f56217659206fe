package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/josephst/druginteractions/internal/app"
	"github.com/josephst/druginteractions/internal/controller"
	"github.com/josephst/druginteractions/internal/infopanel"
	"github.com/josephst/druginteractions/internal/logging"
)

type focus int

const (
	focusSearch focus = iota
	focusGraph
	focusPanel
)

// indicator counts in-flight requests. The API client shows and hides it
// from fetch goroutines; the view polls it on every spinner tick.
type indicator struct {
	active atomic.Int32
}

func (i *indicator) Show() { i.active.Add(1) }

func (i *indicator) Hide() { i.active.Add(-1) }

// Loading reports whether any request is in flight.
func (i *indicator) Loading() bool { return i.active.Load() > 0 }

type model struct {
	search  textinput.Model
	list    viewport.Model
	panel   viewport.Model
	spinner spinner.Model
	focus   focus

	ctrl      *controller.Controller
	indicator *indicator
	initialID string

	items  []graphListItem
	cursor int
	status string
	err    error
	seq    uint64 // sequence of the latest tap or submit
	width  int
	height int
	ready  bool
}

// expandResult is sent when an async tap or submit settles.
type expandResult struct {
	target controller.Target
	label  string
	err    error
	seq    uint64
}

// searchSettled is sent when the debounced search fires.
type searchSettled struct {
	text string
}

func initialModel(ctrl *controller.Controller, ind *indicator, initialID string) model {
	ti := textinput.New()
	ti.Placeholder = "search drugs"
	ti.Prompt = " "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		search:    ti,
		spinner:   sp,
		focus:     focusSearch,
		ctrl:      ctrl,
		indicator: ind,
		initialID: initialID,
	}
	if initialID != "" {
		m.seq = 1
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.initialID != "" {
		cmds = append(cmds, m.doTap(controller.NodeTarget(m.initialID), m.initialID, m.seq))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		if m.focus == focusPanel {
			m.panel, cmd = m.panel.Update(msg)
		} else {
			m.list, cmd = m.list.Update(msg)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2 // search bar + divider
		footerHeight := 1 // status bar
		bodyHeight := max(m.height-headerHeight-footerHeight, 1)
		listWidth, panelWidth := m.paneWidths()

		if !m.ready {
			m.list = viewport.New(listWidth, bodyHeight)
			m.panel = viewport.New(panelWidth, bodyHeight)
			m.ready = true
		} else {
			m.list.Width, m.list.Height = listWidth, bodyHeight
			m.panel.Width, m.panel.Height = panelWidth, bodyHeight
		}
		m.search.Width = m.width - 2
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case expandResult:
		if msg.seq == m.seq {
			m.err = msg.err
			if msg.err == nil {
				m.status = "Showing " + msg.label
			} else {
				m.status = ""
			}
		}
		m.refresh()
		if i := indexOf(m.items, msg.target); i >= 0 {
			m.cursor = i
			m.renderList()
		}
		return m, nil

	case searchSettled:
		if msg.text != "" && m.err == nil {
			m.status = fmt.Sprintf("Press Enter to explore from %s (%q)", m.ctrl.SeedID(), msg.text)
		}
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyTab:
		return m.focusOn((m.focus + 1) % 3), nil
	}

	switch m.focus {
	case focusSearch:
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyEscape:
			return m.focusOn(focusGraph), nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if text := m.search.Value(); text != before {
			_ = m.ctrl.Dispatch(context.Background(), controller.Search{Text: text})
		}
		return m, cmd

	case focusGraph:
		return m.handleGraphKey(msg)
	}

	// Info panel focused.
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		return m.focusOn(focusGraph), nil
	}
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

func (m model) focusOn(f focus) model {
	m.focus = f
	if f == focusSearch {
		m.search.Focus()
	} else {
		m.search.Blur()
	}
	return m
}

// submit expands the seed drug for the current search text.
func (m model) submit() (tea.Model, tea.Cmd) {
	m.seq++
	m.err = nil
	m = m.focusOn(focusGraph)
	query := m.search.Value()
	ctrl := m.ctrl
	seq := m.seq
	seed := ctrl.SeedID()
	return m, func() tea.Msg {
		err := ctrl.Dispatch(context.Background(), controller.Submit{Query: query})
		return expandResult{target: controller.NodeTarget(seed), label: seed, err: err, seq: seq}
	}
}

// tap expands an unexpanded drug and shows the item in the info panel.
func (m model) tap(item graphListItem) (tea.Model, tea.Cmd) {
	m.seq++
	m.err = nil
	return m, m.doTap(item.target(), item.label, m.seq)
}

func (m model) doTap(t controller.Target, label string, seq uint64) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := ctrl.Dispatch(context.Background(), controller.Tap{Target: t})
		return expandResult{target: t, label: label, err: err, seq: seq}
	}
}

// refresh rebuilds the list and info panel from the controller state.
func (m *model) refresh() {
	m.items = flattenGraph(m.ctrl.Graph())
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
	if !m.ready {
		return
	}
	m.renderList()

	body := infopanel.Markdown(m.ctrl.Panel())
	rendered, err := renderMarkdown(body, m.panel.Width)
	if err != nil {
		m.panel.SetContent(body)
	} else {
		m.panel.SetContent(rendered)
	}
	m.panel.GotoTop()
}

// renderList redraws the list and scrolls it to keep the cursor visible.
func (m *model) renderList() {
	if !m.ready {
		return
	}
	m.list.SetContent(renderGraphView(m.items, m.cursor, m.list.Width))
	if m.cursor < m.list.YOffset {
		m.list.SetYOffset(m.cursor)
	} else if m.cursor >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func (m model) paneWidths() (int, int) {
	list := m.width * 2 / 5
	return list, max(m.width-list-1, 1)
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	// Search bar.
	barStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Width(m.width)
	if m.focus == focusSearch {
		barStyle = barStyle.Bold(true)
	}
	b.WriteString(barStyle.Render(m.search.View()))
	b.WriteByte('\n')

	// Divider.
	b.WriteString(strings.Repeat("─", m.width))
	b.WriteByte('\n')

	// Graph list and info panel side by side.
	paneStyle := lipgloss.NewStyle().Height(m.list.Height)
	listStyle := paneStyle.Width(m.list.Width)
	panelStyle := paneStyle.Width(m.panel.Width)
	if m.focus == focusGraph {
		listStyle = listStyle.Bold(true)
	}
	sep := lipgloss.NewStyle().Faint(true).
		Render(strings.TrimSuffix(strings.Repeat("│\n", m.list.Height), "\n"))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Render(m.list.View()),
		sep,
		panelStyle.Render(m.panel.View()),
	))
	b.WriteByte('\n')

	// Status bar.
	b.WriteString(m.statusBarView())

	return b.String()
}

func (m model) statusBarView() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1)

	if m.indicator != nil && m.indicator.Loading() {
		return style.Render(m.spinner.View() + " Loading...")
	}
	if m.err != nil {
		return style.Foreground(lipgloss.Color("9")).Render("Error: " + m.err.Error())
	}

	g := m.ctrl.Graph()
	parts := []string{fmt.Sprintf("%d drugs, %d interactions", g.NodeCount(), g.EdgeCount())}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	switch m.focus {
	case focusSearch:
		parts = append(parts, "[Enter] explore  [Tab] graph")
	case focusGraph:
		parts = append(parts, "[Enter] tap  [c] clear  [/] search  [q] quit")
	case focusPanel:
		parts = append(parts, "[Esc] graph  [q] quit")
	}
	return style.Faint(m.status == "").Render(strings.Join(parts, "  "))
}

func renderMarkdown(body string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(body)
}

func main() {
	shared := app.RegisterFlags(flag.CommandLine)
	logFile := flag.String("log-file", "", "append logs to this file (default: discard)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: druggraph-tui [flags] [DRUGID]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := shared.Config()
	if err != nil {
		log.Fatal(err)
	}
	logger, closeLog, err := logging.Open("druggraph-tui", *logFile, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	var program atomic.Pointer[tea.Program]
	ind := &indicator{}
	stack, err := app.NewStack(cfg, logger, ind, func(text string) {
		if p := program.Load(); p != nil {
			p.Send(searchSettled{text: text})
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	defer stack.Close()

	p := tea.NewProgram(
		initialModel(stack.Controller, ind, flag.Arg(0)),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	program.Store(p)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
