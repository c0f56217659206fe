// Package graph holds the drug-interaction graph that grows as drugs are
// expanded: nodes are drugs, edges are interactions from a source drug to a
// target drug.
package graph

import (
	"sync"

	"github.com/josephst/druginteractions/internal/drugapi"
)

// Offscreen is where new nodes are placed until the next layout pass.
var Offscreen = Position{X: -1000, Y: -1000}

// Position is a node's coordinate in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a drug in the graph.
type Node struct {
	ID          string
	Name        string
	Description string // empty until the drug itself has been expanded
	Position    Position
}

// Edge represents an interaction from Source to Target.
type Edge struct {
	ID          string // "<source>-<target>"
	Source      string
	Target      string
	TargetName  string
	Description string
}

// EdgeID returns the identifier of the edge from source to target.
func EdgeID(source, target string) string {
	return source + "-" + target
}

type edgeKey struct {
	source, target string
}

// Graph is a concurrency-safe interaction graph. Nodes and edges keep their
// insertion order and are only ever removed all at once by Clear.
type Graph struct {
	mu        sync.RWMutex
	layout    Layout
	nodes     map[string]*Node
	nodeOrder []string
	edges     []*Edge
	edgeSet   map[edgeKey]*Edge
	edgeByID  map[string]*Edge
	outgoing  map[string]int
	selected  string
}

// New creates an empty graph. A nil layout selects RandomLayout.
func New(layout Layout) *Graph {
	if layout == nil {
		layout = &RandomLayout{}
	}
	g := &Graph{layout: layout}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.nodes = make(map[string]*Node)
	g.nodeOrder = nil
	g.edges = nil
	g.edgeSet = make(map[edgeKey]*Edge)
	g.edgeByID = make(map[string]*Edge)
	g.outgoing = make(map[string]int)
	g.selected = ""
}

// EnsureNode adds a node unless one with the same id exists. An existing
// node is left untouched, including an empty description. It reports whether
// a node was added.
func (g *Graph) EnsureNode(id, name, description string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ensureNode(id, name, description)
}

func (g *Graph) ensureNode(id, name, description string) bool {
	if _, ok := g.nodes[id]; ok {
		return false
	}
	g.nodes[id] = &Node{ID: id, Name: name, Description: description, Position: Offscreen}
	g.nodeOrder = append(g.nodeOrder, id)
	return true
}

// Describe sets the description of a node that has none. It reports whether
// the node was updated.
func (g *Graph) Describe(id, description string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok || n.Description != "" || description == "" {
		return false
	}
	n.Description = description
	return true
}

// EnsureEdge adds the edge for one interaction of sourceID, creating the
// target node (name only) first if needed. Duplicate edges are ignored.
// It reports whether an edge was added.
func (g *Graph) EnsureEdge(sourceID string, in drugapi.Interaction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ensureEdge(sourceID, in)
}

func (g *Graph) ensureEdge(sourceID string, in drugapi.Interaction) bool {
	g.ensureNode(in.TargetID, in.TargetName, "")

	k := edgeKey{source: sourceID, target: in.TargetID}
	if _, exists := g.edgeSet[k]; exists {
		return false
	}
	e := &Edge{
		ID:          EdgeID(sourceID, in.TargetID),
		Source:      sourceID,
		Target:      in.TargetID,
		TargetName:  in.TargetName,
		Description: in.Description,
	}
	g.edgeSet[k] = e
	g.edgeByID[e.ID] = e
	g.edges = append(g.edges, e)
	g.outgoing[sourceID]++
	return true
}

// MergeInteractions adds an edge for every interaction of sourceID, in input
// order, and returns how many edges were new.
func (g *Graph) MergeInteractions(sourceID string, interactions []drugapi.Interaction) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	added := 0
	for _, in := range interactions {
		if g.ensureEdge(sourceID, in) {
			added++
		}
	}
	return added
}

// Relayout reruns the layout over every node and edge.
func (g *Graph) Relayout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	nodes := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, *e)
	}
	g.layout.Apply(nodes, edges)
}

// Clear removes every node and edge and drops the selection.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

// Select focuses the node or edge with the given id. It reports false and
// leaves the selection unchanged when no such element exists.
func (g *Graph) Select(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, isNode := g.nodes[id]
	_, isEdge := g.edgeByID[id]
	if !isNode && !isEdge {
		return false
	}
	g.selected = id
	return true
}

// Selected returns the id of the focused element, or "" if none.
func (g *Graph) Selected() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selected
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edgeByID[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, *g.nodes[id])
	}
	return nodes
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, *e)
	}
	return edges
}

// OutgoingEdges returns the interactions of id in insertion order.
func (g *Graph) OutgoingEdges(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var result []Edge
	for _, e := range g.edges {
		if e.Source == id {
			result = append(result, *e)
		}
	}
	return result
}

// IsExpanded reports whether id has at least one outgoing edge, i.e. its
// interactions have been fetched and merged.
func (g *Graph) IsExpanded(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.outgoing[id] > 0
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}
