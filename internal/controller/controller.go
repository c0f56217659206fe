// Package controller turns user commands into fetches, graph merges, and
// info panel updates.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/josephst/druginteractions/internal/debounce"
	"github.com/josephst/druginteractions/internal/drugapi"
	"github.com/josephst/druginteractions/internal/graph"
	"github.com/josephst/druginteractions/internal/infopanel"
	"github.com/josephst/druginteractions/internal/metrics"
)

// DefaultSeedID is the drug expanded when a search is submitted.
const DefaultSeedID = "DB00001"

// Fetcher looks up a drug and its interactions.
type Fetcher interface {
	Fetch(ctx context.Context, drugID string) (drugapi.Drug, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, drugID string) (drugapi.Drug, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, drugID string) (drugapi.Drug, error) {
	return f(ctx, drugID)
}

// Options configures a Controller.
type Options struct {
	SeedID   string        // default: DefaultSeedID
	Debounce time.Duration // search quiescence window (default: 200ms)
	Logger   *slog.Logger
	OnSearch func(text string) // called with the settled search text, may be nil
}

func (o *Options) applyDefaults() {
	if o.SeedID == "" {
		o.SeedID = DefaultSeedID
	}
	if o.Debounce <= 0 {
		o.Debounce = 200 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Controller owns the wiring between a Fetcher, a Graph, and the info panel.
type Controller struct {
	graph   *graph.Graph
	fetcher Fetcher
	opts    Options
	log     *slog.Logger
	search  *debounce.Debouncer

	mu    sync.Mutex
	panel infopanel.Panel
}

// New creates a controller over g.
func New(g *graph.Graph, f Fetcher, opts Options) *Controller {
	opts.applyDefaults()
	return &Controller{
		graph:   g,
		fetcher: f,
		opts:    opts,
		log:     opts.Logger,
		search:  debounce.New(opts.Debounce),
		panel:   infopanel.Placeholder(),
	}
}

// Graph returns the graph the controller mutates.
func (c *Controller) Graph() *graph.Graph {
	return c.graph
}

// SeedID returns the drug expanded on search submit.
func (c *Controller) SeedID() string {
	return c.opts.SeedID
}

// Panel returns the current info panel.
func (c *Controller) Panel() infopanel.Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

func (c *Controller) setPanel(p infopanel.Panel) {
	c.mu.Lock()
	c.panel = p
	c.mu.Unlock()
}

// Close cancels any pending search.
func (c *Controller) Close() {
	c.search.Stop()
}

// Dispatch executes a command.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case Expand:
		return c.Expand(ctx, cmd.ID)
	case Tap:
		return c.Tap(ctx, cmd.Target)
	case Search:
		c.Search(cmd.Text)
		return nil
	case Submit:
		return c.Submit(ctx, cmd.Query)
	case Clear:
		c.Clear()
		return nil
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

// Expand fetches drugID and merges it and its interactions into the graph,
// then relays out and selects the drug. On failure the graph is untouched.
func (c *Controller) Expand(ctx context.Context, drugID string) error {
	drug, err := c.fetcher.Fetch(ctx, drugID)
	if err != nil {
		metrics.Expansions.WithLabelValues("failed").Inc()
		c.log.Warn("not found", "drug", drugID, "error", err)
		return fmt.Errorf("expand %s: %w", drugID, err)
	}

	c.graph.EnsureNode(drug.ID, drug.Name, drug.Description)
	c.graph.Describe(drug.ID, drug.Description)
	added := 0
	if len(drug.Interactions) > 0 {
		added = c.graph.MergeInteractions(drug.ID, drug.Interactions)
	}
	c.graph.Relayout()
	c.graph.Select(drug.ID)
	c.recordSize()

	metrics.Expansions.WithLabelValues("ok").Inc()
	c.log.Info("expanded", "drug", drug.ID, "name", drug.Name,
		"interactions", len(drug.Interactions), "new_edges", added)
	return nil
}

// Tap handles a tap on a node or edge. A node without outgoing edges is
// expanded first; the info panel is refreshed from the target's attributes
// either way, including when the expansion fails.
func (c *Controller) Tap(ctx context.Context, t Target) error {
	var err error
	switch t.Kind {
	case TargetNode:
		if !c.graph.IsExpanded(t.ID) {
			err = c.Expand(ctx, t.ID)
		}
		c.setPanel(infopanel.ForNode(c.graph, t.ID))
	case TargetEdge:
		c.graph.Select(t.ID)
		c.setPanel(infopanel.ForEdge(c.graph, t.ID))
	default:
		return fmt.Errorf("unknown tap target kind %d", t.Kind)
	}
	return err
}

// Search schedules a lookup of text once typing pauses. Only the final text
// of a burst reaches Options.OnSearch.
func (c *Controller) Search(text string) {
	c.search.Trigger(func() {
		c.log.Debug("search", "text", text)
		if c.opts.OnSearch != nil {
			c.opts.OnSearch(text)
		}
	})
}

// Submit expands the seed drug and shows it in the info panel, or the
// placeholder if it could not be fetched. The query text is not resolved to
// a drug id yet, so it is logged and otherwise ignored.
// TODO: resolve query to a drug id once the API exposes a name search endpoint.
func (c *Controller) Submit(ctx context.Context, query string) error {
	c.log.Debug("search submitted", "query", query, "seed", c.opts.SeedID)
	err := c.Expand(ctx, c.opts.SeedID)
	c.setPanel(infopanel.ForNode(c.graph, c.opts.SeedID))
	return err
}

// Clear empties the graph, resets the info panel, and drops a pending search.
func (c *Controller) Clear() {
	c.search.Stop()
	c.graph.Clear()
	c.setPanel(infopanel.Placeholder())
	c.recordSize()
	c.log.Info("graph cleared")
}

func (c *Controller) recordSize() {
	metrics.GraphNodes.Set(float64(c.graph.NodeCount()))
	metrics.GraphEdges.Set(float64(c.graph.EdgeCount()))
}
