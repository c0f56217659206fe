package graph

import (
	"math/rand/v2"
	"sync"
)

// Layout positions nodes. Implementations mutate Node.Position in place and
// must not retain the slices.
type Layout interface {
	Apply(nodes []*Node, edges []Edge)
}

// LayoutFunc adapts a function to the Layout interface.
type LayoutFunc func(nodes []*Node, edges []Edge)

// Apply implements Layout.
func (f LayoutFunc) Apply(nodes []*Node, edges []Edge) { f(nodes, edges) }

// RandomLayout scatters nodes uniformly over a Width x Height box, like
// Cytoscape's "random" layout. Zero dimensions default to 1000 x 1000.
type RandomLayout struct {
	Width  float64
	Height float64
	Rand   *rand.Rand // nil uses the global source

	mu sync.Mutex
}

// Apply implements Layout.
func (l *RandomLayout) Apply(nodes []*Node, _ []Edge) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, h := l.Width, l.Height
	if w <= 0 {
		w = 1000
	}
	if h <= 0 {
		h = 1000
	}
	for _, n := range nodes {
		n.Position = Position{X: l.float() * w, Y: l.float() * h}
	}
}

func (l *RandomLayout) float() float64 {
	if l.Rand != nil {
		return l.Rand.Float64()
	}
	return rand.Float64()
}
