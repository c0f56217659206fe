package graph

import (
	"encoding/json"
	"fmt"
)

// Elements is the Cytoscape.js element format, so a browser front end can
// render the same state with cy.add(elements).
type Elements struct {
	Nodes []ElementNode `json:"nodes"`
	Edges []ElementEdge `json:"edges"`
}

// ElementNode is a node in Cytoscape.js format.
type ElementNode struct {
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
	Selected bool     `json:"selected,omitempty"`
}

// NodeData contains the node data fields. Label carries the drug name.
type NodeData struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Expanded    bool   `json:"expanded"`
}

// ElementEdge is an edge in Cytoscape.js format.
type ElementEdge struct {
	Data     EdgeData `json:"data"`
	Selected bool     `json:"selected,omitempty"`
}

// EdgeData contains the edge data fields. Label carries the interaction
// description.
type EdgeData struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	TargetName string `json:"targetName"`
	Label      string `json:"label"`
}

// Elements returns a snapshot of the graph in Cytoscape.js format.
func (g *Graph) Elements() Elements {
	g.mu.RLock()
	defer g.mu.RUnlock()

	el := Elements{
		Nodes: make([]ElementNode, 0, len(g.nodeOrder)),
		Edges: make([]ElementEdge, 0, len(g.edges)),
	}
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		el.Nodes = append(el.Nodes, ElementNode{
			Data: NodeData{
				ID:          n.ID,
				Label:       n.Name,
				Description: n.Description,
				Expanded:    g.outgoing[n.ID] > 0,
			},
			Position: n.Position,
			Selected: g.selected == n.ID,
		})
	}
	for _, e := range g.edges {
		el.Edges = append(el.Edges, ElementEdge{
			Data: EdgeData{
				ID:         e.ID,
				Source:     e.Source,
				Target:     e.Target,
				TargetName: e.TargetName,
				Label:      e.Description,
			},
			Selected: g.selected == e.ID,
		})
	}
	return el
}

// MarshalElements returns the graph as indented Cytoscape.js JSON.
func (g *Graph) MarshalElements() ([]byte, error) {
	data, err := json.MarshalIndent(g.Elements(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal elements: %w", err)
	}
	return data, nil
}
