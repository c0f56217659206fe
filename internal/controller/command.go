package controller

// Command is a user action consumed by Controller.Dispatch.
type Command interface {
	command()
}

// Expand fetches a drug and merges its interactions.
type Expand struct{ ID string }

// Tap selects a node or edge, expanding unexpanded nodes.
type Tap struct{ Target Target }

// Search is a keystroke in the search box.
type Search struct{ Text string }

// Submit is the search box's submit action.
type Submit struct{ Query string }

// Clear empties the graph.
type Clear struct{}

func (Expand) command() {}
func (Tap) command()    {}
func (Search) command() {}
func (Submit) command() {}
func (Clear) command()  {}

// TargetKind distinguishes node taps from edge taps.
type TargetKind int

const (
	TargetNode TargetKind = iota
	TargetEdge
)

// Target identifies a tapped graph element.
type Target struct {
	Kind TargetKind
	ID   string
}

// NodeTarget returns the target for the node with the given id.
func NodeTarget(id string) Target { return Target{Kind: TargetNode, ID: id} }

// EdgeTarget returns the target for the edge with the given id.
func EdgeTarget(id string) Target { return Target{Kind: TargetEdge, ID: id} }
