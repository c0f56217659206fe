// Command druggraph-mcp is an MCP server that exposes the drug interaction
// graph as tools for LLM agents. All tool calls share one graph for the life
// of the stdio session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/josephst/druginteractions/internal/app"
	"github.com/josephst/druginteractions/internal/controller"
	"github.com/josephst/druginteractions/internal/graph"
	"github.com/josephst/druginteractions/internal/infopanel"
	"github.com/josephst/druginteractions/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxDepth = 3

func main() {
	shared := app.RegisterFlags(flag.CommandLine)
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	cfg, err := shared.Config()
	if err != nil {
		log.Fatal(err)
	}
	// stdout carries the MCP transport.
	logger := logging.New("druggraph-mcp", cfg.LogFormat, cfg.LogLevel, os.Stderr)

	stack, err := app.NewStack(cfg, logger, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer stack.Close()

	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	s := server.NewMCPServer("druggraph-mcp", "0.1.0")

	h := &handler{ctrl: stack.Controller, log: logger}
	s.AddTool(drugExpandTool(), h.drugExpand)
	s.AddTool(drugTapTool(), h.drugTap)
	s.AddTool(drugInfoTool(), h.drugInfo)
	s.AddTool(drugGraphTool(), h.drugGraph)
	s.AddTool(drugClearTool(), h.drugClear)

	if err := server.ServeStdio(s); err != nil {
		log.Fatal(err)
	}
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

type handler struct {
	ctrl *controller.Controller
	log  *slog.Logger
}

// Tool definitions.

func drugExpandTool() mcp.Tool {
	return mcp.NewTool("drug_expand",
		mcp.WithDescription(
			"Fetch a drug by its DrugBank id and merge it and its interaction partners "+
				"into the session graph. With depth > 1 the partners are expanded too, "+
				"breadth first. Returns the drug's details and the graph size.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("DrugBank id, e.g. DB00001"),
		),
		mcp.WithNumber("depth",
			mcp.Description(fmt.Sprintf("levels to expand; 1 is the drug only, 2 adds its partners (default 1, max %d)", maxDepth)),
		),
	)
}

func drugTapTool() mcp.Tool {
	return mcp.NewTool("drug_tap",
		mcp.WithDescription(
			"Tap a drug or an interaction, as a user would in the graph view. "+
				"Tapping a drug that has not been expanded fetches it first. "+
				"Set target to tap the interaction from id to target instead. "+
				"Returns the info panel.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("DrugBank id of the drug, or of the interaction's source drug"),
		),
		mcp.WithString("target",
			mcp.Description("DrugBank id of the interaction's target drug"),
		),
	)
}

func drugInfoTool() mcp.Tool {
	return mcp.NewTool("drug_info",
		mcp.WithDescription(
			"Show the info panel for a drug or interaction already in the session graph, "+
				"without fetching anything.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("DrugBank id of the drug, or of the interaction's source drug"),
		),
		mcp.WithString("target",
			mcp.Description("DrugBank id of the interaction's target drug"),
		),
		mcp.WithString("format",
			mcp.Description("markdown (default) or html"),
			mcp.Enum("markdown", "html"),
		),
	)
}

func drugGraphTool() mcp.Tool {
	return mcp.NewTool("drug_graph",
		mcp.WithDescription(
			"Return the session graph: every drug and interaction merged so far. "+
				"Format text is a summary; json is Cytoscape.js elements.",
		),
		mcp.WithString("format",
			mcp.Description("text (default) or json"),
			mcp.Enum("text", "json"),
		),
	)
}

func drugClearTool() mcp.Tool {
	return mcp.NewTool("drug_clear",
		mcp.WithDescription("Remove every drug and interaction from the session graph."),
	)
}

// Tool handlers.
// Handler signatures are dictated by mcp-go's ToolHandlerFunc type.

func (h *handler) drugExpand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // signature required by mcp-go
	id, err := req.RequireString("id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	depth := max(1, min(req.GetInt("depth", 1), maxDepth))

	var (
		mu     sync.Mutex
		failed []string
	)
	err = h.ctrl.ExpandDepth(ctx, id, controller.CrawlOptions{
		MaxDepth: depth,
		OnExpand: func(drugID string, _ int, expandErr error) {
			if expandErr != nil && drugID != id {
				mu.Lock()
				failed = append(failed, drugID)
				mu.Unlock()
			}
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("expand failed: %v", err)), nil
	}

	g := h.ctrl.Graph()
	var b strings.Builder
	b.WriteString(infopanel.Markdown(infopanel.ForNode(g, id)))
	fmt.Fprintf(&b, "\nGraph: %d drugs, %d interactions\n", g.NodeCount(), g.EdgeCount())
	if len(failed) > 0 {
		fmt.Fprintf(&b, "Could not expand: %s\n", strings.Join(failed, ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (h *handler) drugTap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // signature required by mcp-go
	id, err := req.RequireString("id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	t := controller.NodeTarget(id)
	if target := req.GetString("target", ""); target != "" {
		edgeID := graph.EdgeID(id, target)
		if _, ok := h.ctrl.Graph().Edge(edgeID); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no interaction from %s to %s in the graph", id, target)), nil
		}
		t = controller.EdgeTarget(edgeID)
	}

	if err := h.ctrl.Dispatch(ctx, controller.Tap{Target: t}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tap failed: %v", err)), nil
	}
	return mcp.NewToolResultText(infopanel.Markdown(panelFor(h.ctrl.Graph(), t))), nil
}

func (h *handler) drugInfo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // signature required by mcp-go
	id, err := req.RequireString("id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	t := controller.NodeTarget(id)
	if target := req.GetString("target", ""); target != "" {
		t = controller.EdgeTarget(graph.EdgeID(id, target))
	}

	p := panelFor(h.ctrl.Graph(), t)
	if p.Mode == infopanel.ModePlaceholder {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not in the graph; use drug_expand or drug_tap first", t.ID)), nil
	}

	switch req.GetString("format", "markdown") {
	case "markdown":
		return mcp.NewToolResultText(infopanel.Markdown(p)), nil
	case "html":
		out, err := infopanel.HTML(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	default:
		return mcp.NewToolResultError("format must be markdown or html"), nil
	}
}

func (h *handler) drugGraph(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // signature required by mcp-go
	g := h.ctrl.Graph()
	switch req.GetString("format", "text") {
	case "text":
		return mcp.NewToolResultText(formatGraph(g)), nil
	case "json":
		data, err := g.MarshalElements()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode graph: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	default:
		return mcp.NewToolResultError("format must be text or json"), nil
	}
}

func (h *handler) drugClear(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // signature required by mcp-go
	if err := h.ctrl.Dispatch(context.Background(), controller.Clear{}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("graph cleared"), nil
}

// panelFor builds the info panel for t from the graph directly, so
// concurrent tool calls each see their own target.
func panelFor(g *graph.Graph, t controller.Target) infopanel.Panel {
	if t.Kind == controller.TargetEdge {
		return infopanel.ForEdge(g, t.ID)
	}
	return infopanel.ForNode(g, t.ID)
}

// formatGraph renders a graph as a plain-text summary for LLM consumption.
func formatGraph(g *graph.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d drugs, %d interactions\n", g.NodeCount(), g.EdgeCount())

	nodes := g.Nodes()
	if len(nodes) == 0 {
		return b.String()
	}

	b.WriteString("\nDrugs:\n")
	for _, n := range nodes {
		name := n.Name
		if name == "" {
			name = "(no name)"
		}
		fmt.Fprintf(&b, "  %-9s %q  %d interactions\n", n.ID, name, len(g.OutgoingEdges(n.ID)))
	}

	edges := g.Edges()
	if len(edges) > 0 {
		b.WriteString("\nInteractions:\n")
		for _, e := range edges {
			fmt.Fprintf(&b, "  %s -> %s: %s\n", e.Source, e.Target, e.Description)
		}
	}

	return b.String()
}
