package app

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newFlagSet(t *testing.T, args ...string) *Flags {
	t.Helper()
	for _, key := range []string{"DRUGGRAPH_API", "DRUGGRAPH_SEED", "DRUGGRAPH_TIMEOUT", "DRUGGRAPH_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := RegisterFlags(fs)
	if err := fs.Parse(append([]string{"-config", filepath.Join(t.TempDir(), "none.toml")}, args...)); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return f
}

func TestFlagsOverrideConfig(t *testing.T) {
	f := newFlagSet(t, "-api", "https://drugs.example.com", "-seed", "DB00945", "-timeout", "3s", "-log-level", "debug", "-rate-limit", "0")

	cfg, err := f.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.APIBase != "https://drugs.example.com" {
		t.Errorf("api base = %q", cfg.APIBase)
	}
	if cfg.SeedID != "DB00945" {
		t.Errorf("seed = %q", cfg.SeedID)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("rate limit = %g, want explicit 0", cfg.RateLimit)
	}
}

func TestUnsetFlagsKeepConfig(t *testing.T) {
	f := newFlagSet(t)
	t.Setenv("DRUGGRAPH_SEED", "DB00316")

	cfg, err := f.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.SeedID != "DB00316" {
		t.Errorf("seed = %q, want env value", cfg.SeedID)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %s, want default", cfg.Timeout)
	}
}

func TestFlagsRejectEmptySeed(t *testing.T) {
	f := newFlagSet(t, "-seed", "")
	if _, err := f.Config(); err == nil {
		t.Fatal("expected error for empty seed")
	}
}

func TestNewStack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"drugbankId":"DB00001","name":"Aspirin","interactions":[]}`))
	}))
	defer srv.Close()

	f := newFlagSet(t, "-api", srv.URL)
	cfg, err := f.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}

	stack, err := NewStack(cfg, slog.New(slog.DiscardHandler), nil, nil)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	defer stack.Close()

	if err := stack.Controller.Submit(context.Background(), "ignored"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if stack.Graph.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", stack.Graph.NodeCount())
	}
}

func TestNewStackRejectsBadURL(t *testing.T) {
	f := newFlagSet(t, "-api", "ftp://drugs.example.com")
	cfg, err := f.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if _, err := NewStack(cfg, slog.New(slog.DiscardHandler), nil, nil); err == nil {
		t.Fatal("expected error for ftp base URL")
	}
}
