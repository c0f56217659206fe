package controller

import (
	"context"
	"sync"
	"sync/atomic"
)

// CrawlOptions configures ExpandDepth.
type CrawlOptions struct {
	// MaxDepth is the number of levels expanded, counting the start drug, so 1
	// expands the start drug only (default: 1).
	MaxDepth int
	// Workers is the number of concurrent fetches (default: 4).
	Workers int
	// MaxExpansions bounds the number of fetches, start included (default: 100).
	MaxExpansions int
	// OnExpand is called after each fetch, may be nil.
	OnExpand func(id string, depth int, err error)
}

func (o *CrawlOptions) applyDefaults() {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 1
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxExpansions <= 0 {
		o.MaxExpansions = 100
	}
}

type crawlItem struct {
	id    string
	depth int
}

// ExpandDepth expands startID and then, breadth first, the interaction
// targets reachable within opts.MaxDepth-1 hops. Drugs that are already
// expanded are not fetched again but their targets are still followed.
// Only a failure to expand startID is returned; later failures are reported
// through opts.OnExpand. The start drug is selected when the crawl ends.
func (c *Controller) ExpandDepth(ctx context.Context, startID string, opts CrawlOptions) error {
	opts.applyDefaults()

	var fetches atomic.Int64
	if !c.graph.IsExpanded(startID) {
		fetches.Add(1)
		err := c.Expand(ctx, startID)
		if opts.OnExpand != nil {
			opts.OnExpand(startID, 0, err)
		}
		if err != nil {
			return err
		}
	}

	queue := make(chan crawlItem, 1000)
	var wg sync.WaitGroup

	visited := map[string]bool{startID: true}
	var visitMu sync.Mutex

	// markVisited returns true if the id was not yet visited, and marks it.
	markVisited := func(id string) bool {
		visitMu.Lock()
		defer visitMu.Unlock()
		if visited[id] {
			return false
		}
		visited[id] = true
		return true
	}

	enqueueTargets := func(id string, depth int) {
		if depth+1 >= opts.MaxDepth {
			return
		}
		for _, e := range c.graph.OutgoingEdges(id) {
			if markVisited(e.Target) {
				wg.Add(1)
				child := crawlItem{id: e.Target, depth: depth + 1}
				go func() { queue <- child }()
			}
		}
	}

	enqueueTargets(startID, 0)

	for range opts.Workers {
		go func() {
			for item := range queue {
				func() {
					defer wg.Done()

					if ctx.Err() != nil {
						return
					}
					if !c.graph.IsExpanded(item.id) {
						if fetches.Add(1) > int64(opts.MaxExpansions) {
							return
						}
						err := c.Expand(ctx, item.id)
						if opts.OnExpand != nil {
							opts.OnExpand(item.id, item.depth, err)
						}
						if err != nil {
							return
						}
					}
					enqueueTargets(item.id, item.depth)
				}()
			}
		}()
	}

	wg.Wait()
	close(queue)

	c.graph.Select(startID)
	return nil
}
