// Package infopanel builds the details shown for a tapped node or edge.
package infopanel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/josephst/druginteractions/internal/graph"
	"github.com/yuin/goldmark"
)

// Mode selects which panel is visible.
type Mode int

const (
	ModePlaceholder Mode = iota
	ModeNode
	ModeEdge
)

func (m Mode) String() string {
	switch m {
	case ModeNode:
		return "node"
	case ModeEdge:
		return "edge"
	default:
		return "placeholder"
	}
}

// Entry is one row of a drug's interaction list.
type Entry struct {
	TargetID    string
	TargetName  string
	Description string
}

// NodeInfo is the panel content for a drug.
type NodeInfo struct {
	ID           string
	Name         string
	Description  string
	Expanded     bool
	Interactions []Entry
}

// EdgeInfo is the panel content for an interaction.
type EdgeInfo struct {
	ID          string
	Source      string
	SourceName  string
	Target      string
	TargetName  string
	Description string
}

// Panel is the info panel state. Exactly one of Node and Edge is set when
// Mode is ModeNode or ModeEdge respectively.
type Panel struct {
	Mode Mode
	Node *NodeInfo
	Edge *EdgeInfo
}

// Placeholder is the panel shown before anything is tapped.
func Placeholder() Panel {
	return Panel{Mode: ModePlaceholder}
}

// ForNode builds the panel for the node with the given id from its current
// attributes and outgoing edges. A missing node yields the placeholder.
func ForNode(g *graph.Graph, id string) Panel {
	n, ok := g.Node(id)
	if !ok {
		return Placeholder()
	}
	info := &NodeInfo{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
	}
	for _, e := range g.OutgoingEdges(id) {
		info.Interactions = append(info.Interactions, Entry{
			TargetID:    e.Target,
			TargetName:  e.TargetName,
			Description: e.Description,
		})
	}
	info.Expanded = len(info.Interactions) > 0
	return Panel{Mode: ModeNode, Node: info}
}

// ForEdge builds the panel for the edge with the given id. A missing edge
// yields the placeholder.
func ForEdge(g *graph.Graph, id string) Panel {
	e, ok := g.Edge(id)
	if !ok {
		return Placeholder()
	}
	info := &EdgeInfo{
		ID:          e.ID,
		Source:      e.Source,
		Target:      e.Target,
		TargetName:  e.TargetName,
		Description: e.Description,
	}
	if src, ok := g.Node(e.Source); ok {
		info.SourceName = src.Name
	}
	return Panel{Mode: ModeEdge, Edge: info}
}

// Markdown renders the panel as a markdown document.
func Markdown(p Panel) string {
	var b strings.Builder
	switch p.Mode {
	case ModeNode:
		n := p.Node
		fmt.Fprintf(&b, "# %s\n\n", escape(orID(n.Name, n.ID)))
		fmt.Fprintf(&b, "**ID:** %s\n\n", escape(n.ID))
		if n.Description != "" {
			b.WriteString(escape(n.Description))
			b.WriteString("\n\n")
		} else {
			b.WriteString("_No description yet. Expand this drug to load it._\n\n")
		}
		b.WriteString("## Interactions\n\n")
		if len(n.Interactions) == 0 {
			b.WriteString("_Not expanded._\n")
			break
		}
		for _, in := range n.Interactions {
			fmt.Fprintf(&b, "- **%s**\n  - %s\n", escape(orID(in.TargetName, in.TargetID)), escape(in.Description))
		}
	case ModeEdge:
		e := p.Edge
		fmt.Fprintf(&b, "# %s → %s\n\n", escape(orID(e.SourceName, e.Source)), escape(orID(e.TargetName, e.Target)))
		fmt.Fprintf(&b, "**ID:** %s\n\n", escape(e.ID))
		if e.Description != "" {
			b.WriteString(escape(e.Description))
			b.WriteString("\n")
		}
	default:
		b.WriteString("_Select a drug or an interaction to see its details._\n")
	}
	return b.String()
}

// HTML renders the panel markdown to an HTML fragment.
func HTML(p Panel) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(p)), &buf); err != nil {
		return "", fmt.Errorf("render info panel: %w", err)
	}
	return buf.String(), nil
}

func orID(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

// escape keeps API text from being interpreted as markdown markup. Line
// breaks are collapsed so the text stays inside its list item or paragraph,
// and a leading block marker (quote, list bullet, ordered list number) is
// neutralized.
func escape(s string) string {
	s = markdownEscaper.Replace(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return s
	}
	switch s[0] {
	case '>', '-', '+', '=':
		return `\` + s
	}
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(s) && (s[digits] == '.' || s[digits] == ')') {
		return s[:digits] + `\` + s[digits:]
	}
	return s
}
