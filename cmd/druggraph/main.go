package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/josephst/druginteractions/internal/app"
	"github.com/josephst/druginteractions/internal/controller"
	"github.com/josephst/druginteractions/internal/graph"
	"github.com/josephst/druginteractions/internal/infopanel"
	"github.com/josephst/druginteractions/internal/logging"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "info":
			infoMain(os.Args[2:])
			return
		case "graph":
			graphMain(os.Args[2:])
			return
		}
	}
	graphMain(os.Args[1:])
}

func graphMain(args []string) {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	shared := app.RegisterFlags(fs)
	depth := fs.Int("depth", 0, "levels to expand from each drug; 1 is the drug only (env: DRUGGRAPH_DEPTH)")
	format := fs.String("format", "text", "output format (text, json)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: druggraph [-depth N] [-format text|json] DRUGID...\n")
		fmt.Fprintf(os.Stderr, "       druggraph info [-html] DRUGID\n")
		fmt.Fprintf(os.Stderr, "       druggraph info [-html] -edge SOURCEID TARGETID\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	if err := validateFormat(*format); err != nil {
		log.Fatal(err)
	}

	cfg, err := shared.Config()
	if err != nil {
		log.Fatal(err)
	}
	if *depth > 0 {
		cfg.Depth = *depth
	}

	logger := logging.New("druggraph", cfg.LogFormat, cfg.LogLevel, os.Stderr)
	stack, err := app.NewStack(cfg, logger, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer stack.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, id := range fs.Args() {
		fmt.Fprintf(os.Stderr, "Expanding %s (depth %d)...\n", id, cfg.Depth)
		err := stack.Controller.ExpandDepth(ctx, id, controller.CrawlOptions{
			MaxDepth: cfg.Depth,
			OnExpand: func(id string, depth int, err error) {
				if err != nil {
					fmt.Fprintf(os.Stderr, "  [not found] %s\n", id)
					return
				}
				n, _ := stack.Graph.Node(id)
				fmt.Fprintf(os.Stderr, "  [%d] %s (%d interactions)\n", depth, nodeLabel(n), len(stack.Graph.OutgoingEdges(id)))
			},
		})
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	switch *format {
	case "json":
		data, err := stack.Graph.MarshalElements()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(data))
	default:
		fmt.Print(formatGraph(stack.Graph))
	}

	if failed == fs.NArg() {
		os.Exit(1)
	}
}

func infoMain(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	shared := app.RegisterFlags(fs)
	html := fs.Bool("html", false, "render the panel as HTML instead of markdown")
	edge := fs.Bool("edge", false, "show the interaction SOURCEID -> TARGETID instead of a drug")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: druggraph info [-html] DRUGID\n")
		fmt.Fprintf(os.Stderr, "       druggraph info [-html] -edge SOURCEID TARGETID\n\n")
		fmt.Fprintf(os.Stderr, "Expand a drug and print its info panel.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	want := 1
	if *edge {
		want = 2
	}
	if fs.NArg() != want {
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := shared.Config()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New("druggraph", cfg.LogFormat, cfg.LogLevel, os.Stderr)
	stack, err := app.NewStack(cfg, logger, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer stack.Close()

	ctx := context.Background()
	source := fs.Arg(0)
	if err := stack.Controller.Tap(ctx, controller.NodeTarget(source)); err != nil {
		log.Fatal(err)
	}
	if *edge {
		id := graph.EdgeID(source, fs.Arg(1))
		if _, ok := stack.Graph.Edge(id); !ok {
			log.Fatalf("%s has no interaction with %s", source, fs.Arg(1))
		}
		if err := stack.Controller.Tap(ctx, controller.EdgeTarget(id)); err != nil {
			log.Fatal(err)
		}
	}

	panel := stack.Controller.Panel()
	if !*html {
		fmt.Print(infopanel.Markdown(panel))
		return
	}
	out, err := infopanel.HTML(panel)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(out)
}

// formatGraph renders a graph as a plain-text summary.
func formatGraph(g *graph.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Graph: %d drugs, %d interactions\n", g.NodeCount(), g.EdgeCount())

	nodes := g.Nodes()
	if len(nodes) == 0 {
		return b.String()
	}

	b.WriteString("\nDrugs:\n")
	for _, n := range nodes {
		state := "leaf"
		if g.IsExpanded(n.ID) {
			state = "expanded"
		}
		fmt.Fprintf(&b, "  [%-8s] %-9s %s\n", state, n.ID, nodeLabel(n))
	}

	edges := g.Edges()
	if len(edges) > 0 {
		b.WriteString("\nInteractions:\n")
		for _, e := range edges {
			from, _ := g.Node(e.Source)
			fmt.Fprintf(&b, "  %s -> %s: %s\n", labelOr(from.Name, e.Source), labelOr(e.TargetName, e.Target), e.Description)
		}
	}
	return b.String()
}

func nodeLabel(n graph.Node) string {
	return labelOr(n.Name, n.ID)
}

func labelOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

var validFormats = map[string]bool{
	"text": true,
	"json": true,
}

func validateFormat(format string) error {
	if !validFormats[format] {
		return fmt.Errorf("unsupported format: %s (valid: text, json)", format)
	}
	return nil
}
