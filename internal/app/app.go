// Package app wires configuration, logging, the drug API client, and the
// controller together for the druggraph binaries.
package app

import (
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/josephst/druginteractions/internal/config"
	"github.com/josephst/druginteractions/internal/controller"
	"github.com/josephst/druginteractions/internal/drugapi"
	"github.com/josephst/druginteractions/internal/graph"
)

// Flags are the command-line settings shared by every binary. Flags that are
// set on the command line override the config file and environment.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath string
	API        string
	Seed       string
	HTTP3      bool
	Insecure   bool
	Timeout    time.Duration
	RateLimit  float64
	LogLevel   string
	LogFormat  string
}

// RegisterFlags defines the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", config.DefaultPath(), "config file (env: DRUGGRAPH_CONFIG)")
	fs.StringVar(&f.API, "api", "", "interaction API base URL (env: DRUGGRAPH_API)")
	fs.StringVar(&f.Seed, "seed", "", "drug id expanded on search submit (env: DRUGGRAPH_SEED)")
	fs.BoolVar(&f.HTTP3, "http3", false, "talk to the API over HTTP/3 (env: DRUGGRAPH_HTTP3)")
	fs.BoolVar(&f.Insecure, "insecure", false, "skip TLS certificate verification (env: DRUGGRAPH_INSECURE)")
	fs.DurationVar(&f.Timeout, "timeout", 0, "per-request timeout, e.g. 10s (env: DRUGGRAPH_TIMEOUT)")
	fs.Float64Var(&f.RateLimit, "rate-limit", 0, "API requests per second, 0 for unlimited (env: DRUGGRAPH_RATE_LIMIT)")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error (env: DRUGGRAPH_LOG_LEVEL)")
	fs.StringVar(&f.LogFormat, "log-format", "", "text or json (env: DRUGGRAPH_LOG_FORMAT)")
	return f
}

// Config loads the config file and environment, then applies the flags that
// were set explicitly.
func (f *Flags) Config() (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "api":
			cfg.APIBase = f.API
		case "seed":
			cfg.SeedID = f.Seed
		case "http3":
			cfg.HTTP3 = f.HTTP3
		case "insecure":
			cfg.Insecure = f.Insecure
		case "timeout":
			cfg.Timeout = f.Timeout
		case "rate-limit":
			cfg.RateLimit = f.RateLimit
		case "log-level":
			cfg.LogLevel = f.LogLevel
		case "log-format":
			cfg.LogFormat = f.LogFormat
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Stack is a ready-to-use client, graph, and controller.
type Stack struct {
	Client     *drugapi.Client
	Graph      *graph.Graph
	Controller *controller.Controller
}

// Close releases the controller and client.
func (s *Stack) Close() {
	s.Controller.Close()
	s.Client.Close()
}

// NewStack builds the client, an empty graph, and a controller from cfg.
// indicator may be nil.
func NewStack(cfg *config.Config, logger *slog.Logger, indicator drugapi.LoadingIndicator, onSearch func(string)) (*Stack, error) {
	opts := cfg.ClientOptions()
	opts.Logger = logger
	opts.Indicator = indicator
	client, err := drugapi.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	g := graph.New(nil)
	ctrl := controller.New(g, client, controller.Options{
		SeedID:   cfg.SeedID,
		Debounce: cfg.Debounce,
		Logger:   logger,
		OnSearch: onSearch,
	})
	return &Stack{Client: client, Graph: g, Controller: ctrl}, nil
}
