package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/josephst/druginteractions/internal/controller"
	"github.com/josephst/druginteractions/internal/graph"
)

// graphListItem is a flattened node or edge for display in the list view.
type graphListItem struct {
	kind     controller.TargetKind
	id       string
	label    string
	detail   string
	expanded bool
}

func (it graphListItem) target() controller.Target {
	return controller.Target{Kind: it.kind, ID: it.id}
}

// flattenGraph lists every drug in insertion order, each followed by its
// outgoing interactions.
func flattenGraph(g *graph.Graph) []graphListItem {
	if g == nil {
		return nil
	}

	var items []graphListItem
	for _, n := range g.Nodes() {
		edges := g.OutgoingEdges(n.ID)
		label := n.Name
		if label == "" {
			label = n.ID
		}
		items = append(items, graphListItem{
			kind:     controller.TargetNode,
			id:       n.ID,
			label:    label,
			detail:   n.ID,
			expanded: len(edges) > 0,
		})
		for _, e := range edges {
			target := e.TargetName
			if target == "" {
				target = e.Target
			}
			items = append(items, graphListItem{
				kind:   controller.TargetEdge,
				id:     e.ID,
				label:  target,
				detail: e.Description,
			})
		}
	}
	return items
}

// indexOf returns the position of the item for t, or -1.
func indexOf(items []graphListItem, t controller.Target) int {
	for i, it := range items {
		if it.kind == t.Kind && it.id == t.ID {
			return i
		}
	}
	return -1
}

// renderGraphView renders the list, one line per item, for the list viewport.
func renderGraphView(items []graphListItem, selectedIdx, width int) string {
	if len(items) == 0 {
		return "\n  No drugs yet. Type a name and press Enter.\n"
	}

	var b strings.Builder
	for i, item := range items {
		cursor := "  "
		if i == selectedIdx {
			cursor = "> "
		}

		var line string
		switch item.kind {
		case controller.TargetEdge:
			line = fmt.Sprintf("%s    ├─ %s", cursor, item.label)
			if item.detail != "" {
				line += ": " + item.detail
			}
		default:
			icon := "○"
			if item.expanded {
				icon = "●"
			}
			line = fmt.Sprintf("%s%s %s (%s)", cursor, icon, item.label, item.detail)
		}

		b.WriteString(truncate(line, width-1))
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// handleGraphKey processes key events when the graph list has focus.
func (m model) handleGraphKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		return m.focusOn(focusSearch), textinput.Blink
	case "c":
		m.ctrl.Clear()
		m.err = nil
		m.status = "Graph cleared"
		m.cursor = 0
		m.refresh()
		return m, nil
	case "j", "down":
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.renderList()
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.renderList()
		}
		return m, nil
	case "g", "home":
		m.cursor = 0
		m.renderList()
		return m, nil
	case "G", "end":
		if len(m.items) > 0 {
			m.cursor = len(m.items) - 1
			m.renderList()
		}
		return m, nil
	case "enter", " ":
		if m.cursor >= 0 && m.cursor < len(m.items) {
			return m.tap(m.items[m.cursor])
		}
		return m, nil
	}
	return m, nil
}
