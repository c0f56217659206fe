package graph

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/josephst/druginteractions/internal/drugapi"
)

func TestNewGraph(t *testing.T) {
	g := New(nil)
	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", g.NodeCount())
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if g.Selected() != "" {
		t.Errorf("Selected() = %q, want empty", g.Selected())
	}
}

func TestEnsureNode(t *testing.T) {
	g := New(nil)
	if !g.EnsureNode("DB00001", "Aspirin", "Pain reliever") {
		t.Fatal("EnsureNode reported no insert on empty graph")
	}

	n, ok := g.Node("DB00001")
	if !ok {
		t.Fatal("Node returned false")
	}
	if n.Name != "Aspirin" || n.Description != "Pain reliever" {
		t.Errorf("node = %+v", n)
	}
	if n.Position != Offscreen {
		t.Errorf("Position = %+v, want offscreen %+v", n.Position, Offscreen)
	}
}

func TestEnsureNodeIsIdempotent(t *testing.T) {
	g := New(nil)
	g.EnsureNode("DB00001", "Aspirin", "")
	if g.EnsureNode("DB00001", "Other", "Late description") {
		t.Error("second EnsureNode reported an insert")
	}

	if g.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1", g.NodeCount())
	}
	n, _ := g.Node("DB00001")
	if n.Name != "Aspirin" {
		t.Errorf("Name = %q, want %q", n.Name, "Aspirin")
	}
	if n.Description != "" {
		t.Errorf("Description = %q, want it not backfilled", n.Description)
	}
}

func TestDescribe(t *testing.T) {
	g := New(nil)
	g.EnsureNode("DB00002", "Warfarin", "")

	if !g.Describe("DB00002", "Anticoagulant") {
		t.Fatal("Describe did not fill a missing description")
	}
	if g.Describe("DB00002", "Something else") {
		t.Error("Describe overwrote an existing description")
	}
	if g.Describe("DB99999", "Nope") {
		t.Error("Describe reported an update for a missing node")
	}

	n, _ := g.Node("DB00002")
	if n.Description != "Anticoagulant" {
		t.Errorf("Description = %q, want %q", n.Description, "Anticoagulant")
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestGetNodeNotFound(t *testing.T) {
	g := New(nil)
	if _, ok := g.Node("DB00404"); ok {
		t.Error("expected false for missing node")
	}
	if _, ok := g.Edge("DB00404-DB00405"); ok {
		t.Error("expected false for missing edge")
	}
}

func TestMergeInteractionsCreatesTargets(t *testing.T) {
	g := New(nil)
	added := g.MergeInteractions("DB00001", []drugapi.Interaction{
		{TargetID: "DB00002", TargetName: "X", Description: "d"},
	})
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}

	target, ok := g.Node("DB00002")
	if !ok {
		t.Fatal("target node DB00002 was not created")
	}
	if target.Name != "X" {
		t.Errorf("target Name = %q, want %q", target.Name, "X")
	}
	if target.Description != "" {
		t.Errorf("target Description = %q, want empty", target.Description)
	}
	if _, ok := g.Node("DB00001"); ok {
		t.Error("source node DB00001 should not be created by a merge")
	}

	e, ok := g.Edge("DB00001-DB00002")
	if !ok {
		t.Fatal("edge DB00001-DB00002 missing")
	}
	if e.Source != "DB00001" || e.Target != "DB00002" || e.Description != "d" || e.TargetName != "X" {
		t.Errorf("edge = %+v", e)
	}
}

func TestMergeInteractionsIsIdempotent(t *testing.T) {
	g := New(nil)
	g.EnsureNode("DB00001", "Aspirin", "")
	interactions := []drugapi.Interaction{
		{TargetID: "DB00002", TargetName: "Warfarin", Description: "Bleeding risk"},
		{TargetID: "DB00003", TargetName: "Ibuprofen", Description: "GI risk"},
		{TargetID: "DB00002", TargetName: "Warfarin", Description: "Duplicate in one payload"},
	}

	if added := g.MergeInteractions("DB00001", interactions); added != 2 {
		t.Errorf("first merge added = %d, want 2", added)
	}
	if added := g.MergeInteractions("DB00001", interactions); added != 0 {
		t.Errorf("second merge added = %d, want 0", added)
	}

	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	e, _ := g.Edge("DB00001-DB00002")
	if e.Description != "Bleeding risk" {
		t.Errorf("first edge label kept = %q, want %q", e.Description, "Bleeding risk")
	}
}

func TestMergeKeepsInputOrder(t *testing.T) {
	g := New(nil)
	g.MergeInteractions("A", []drugapi.Interaction{
		{TargetID: "C", TargetName: "C"},
		{TargetID: "B", TargetName: "B"},
		{TargetID: "D", TargetName: "D"},
	})

	edges := g.OutgoingEdges("A")
	want := []string{"A-C", "A-B", "A-D"}
	if len(edges) != len(want) {
		t.Fatalf("OutgoingEdges = %d, want %d", len(edges), len(want))
	}
	for i, e := range edges {
		if e.ID != want[i] {
			t.Errorf("edges[%d].ID = %q, want %q", i, e.ID, want[i])
		}
	}

	nodes := g.Nodes()
	if nodes[0].ID != "C" || nodes[2].ID != "D" {
		t.Errorf("node order = %v", nodes)
	}
}

func TestEdgeKeyDoesNotCollideOnDashes(t *testing.T) {
	g := New(nil)
	g.EnsureEdge("A-B", drugapi.Interaction{TargetID: "C"})
	g.EnsureEdge("A", drugapi.Interaction{TargetID: "B-C"})
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestIsExpanded(t *testing.T) {
	g := New(nil)
	g.EnsureNode("A", "A", "")
	if g.IsExpanded("A") {
		t.Error("fresh node reported expanded")
	}
	g.EnsureEdge("A", drugapi.Interaction{TargetID: "B", TargetName: "B"})
	if !g.IsExpanded("A") {
		t.Error("node with outgoing edge not expanded")
	}
	if g.IsExpanded("B") {
		t.Error("target-only node reported expanded")
	}
}

func TestNeighborsViaOutgoingEdges(t *testing.T) {
	g := New(nil)
	g.MergeInteractions("A", []drugapi.Interaction{{TargetID: "B"}, {TargetID: "C"}})
	g.MergeInteractions("B", []drugapi.Interaction{{TargetID: "C"}})

	if n := len(g.OutgoingEdges("A")); n != 2 {
		t.Errorf("OutgoingEdges(A) = %d, want 2", n)
	}
	if n := len(g.OutgoingEdges("B")); n != 1 {
		t.Errorf("OutgoingEdges(B) = %d, want 1", n)
	}
	if n := len(g.OutgoingEdges("C")); n != 0 {
		t.Errorf("OutgoingEdges(C) = %d, want 0", n)
	}
}

func TestClear(t *testing.T) {
	g := New(nil)
	g.EnsureNode("A", "A", "")
	g.MergeInteractions("A", []drugapi.Interaction{{TargetID: "B"}, {TargetID: "C"}})
	g.Select("A")

	g.Clear()

	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("after Clear: nodes=%d edges=%d, want 0/0", g.NodeCount(), g.EdgeCount())
	}
	if g.Selected() != "" {
		t.Errorf("Selected() = %q after Clear", g.Selected())
	}
	if g.IsExpanded("A") {
		t.Error("A still expanded after Clear")
	}

	// The graph is reusable after a clear.
	g.EnsureNode("A", "A", "")
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d after re-adding, want 1", g.NodeCount())
	}
}

func TestSelect(t *testing.T) {
	g := New(nil)
	g.MergeInteractions("A", []drugapi.Interaction{{TargetID: "B"}})

	if g.Select("missing") {
		t.Error("Select(missing) = true")
	}
	if !g.Select("B") {
		t.Fatal("Select(B) = false")
	}
	if g.Selected() != "B" {
		t.Errorf("Selected() = %q, want B", g.Selected())
	}
	if !g.Select("A-B") {
		t.Error("Select(edge) = false")
	}
	if g.Select("nope") || g.Selected() != "A-B" {
		t.Errorf("failed select changed selection to %q", g.Selected())
	}
}

func TestRelayoutPositionsEveryNode(t *testing.T) {
	layout := &RandomLayout{Width: 200, Height: 100, Rand: rand.New(rand.NewPCG(1, 2))}
	g := New(layout)
	g.EnsureNode("A", "A", "")
	g.MergeInteractions("A", []drugapi.Interaction{{TargetID: "B"}, {TargetID: "C"}})

	g.Relayout()

	for _, n := range g.Nodes() {
		if n.Position == Offscreen {
			t.Errorf("node %s still offscreen after Relayout", n.ID)
		}
		if n.Position.X < 0 || n.Position.X >= 200 || n.Position.Y < 0 || n.Position.Y >= 100 {
			t.Errorf("node %s out of bounds: %+v", n.ID, n.Position)
		}
	}
}

func TestRelayoutUsesCustomLayout(t *testing.T) {
	var gotNodes, gotEdges int
	g := New(LayoutFunc(func(nodes []*Node, edges []Edge) {
		gotNodes, gotEdges = len(nodes), len(edges)
		for i, n := range nodes {
			n.Position = Position{X: float64(i)}
		}
	}))
	g.MergeInteractions("A", []drugapi.Interaction{{TargetID: "B"}, {TargetID: "C"}})
	g.Relayout()

	if gotNodes != 2 || gotEdges != 2 {
		t.Errorf("layout saw %d nodes, %d edges; want 2, 2", gotNodes, gotEdges)
	}
	n, _ := g.Node("C")
	if n.Position.X != 1 {
		t.Errorf("C.X = %v, want 1", n.Position.X)
	}
}

func TestNodesReturnsCopies(t *testing.T) {
	g := New(nil)
	g.EnsureNode("A", "A", "")
	nodes := g.Nodes()
	nodes[0].Name = "mutated"
	if n, _ := g.Node("A"); n.Name != "A" {
		t.Errorf("graph mutated through returned slice: %q", n.Name)
	}
}

func TestElements(t *testing.T) {
	g := New(nil)
	g.EnsureNode("DB00001", "Aspirin", "Pain reliever")
	g.MergeInteractions("DB00001", []drugapi.Interaction{
		{TargetID: "DB00002", TargetName: "Warfarin", Description: "Bleeding risk"},
	})
	g.Select("DB00001")

	data, err := g.MarshalElements()
	if err != nil {
		t.Fatalf("MarshalElements: %v", err)
	}

	var el Elements
	if err := json.Unmarshal(data, &el); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(el.Nodes) != 2 || len(el.Edges) != 1 {
		t.Fatalf("elements = %d nodes, %d edges; want 2, 1", len(el.Nodes), len(el.Edges))
	}
	if !el.Nodes[0].Selected || !el.Nodes[0].Data.Expanded {
		t.Errorf("root node = %+v, want selected and expanded", el.Nodes[0])
	}
	if el.Nodes[1].Data.Expanded {
		t.Error("target node marked expanded")
	}
	if el.Edges[0].Data.Label != "Bleeding risk" || el.Edges[0].Data.ID != "DB00001-DB00002" {
		t.Errorf("edge = %+v", el.Edges[0].Data)
	}
}
