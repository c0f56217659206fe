package drugapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/josephst/druginteractions/internal/metrics"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/time/rate"
)

// maxBodySize bounds how much of a response body is decoded.
const maxBodySize = 8 << 20

// LoadingIndicator is toggled around every request the client issues.
type LoadingIndicator interface {
	Show()
	Hide()
}

// Options configures client behavior.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client // overrides HTTP3, Insecure and Timeout when set
	HTTP3      bool         // dial the API over QUIC; requires an https base URL
	Insecure   bool
	Timeout    time.Duration // 0 selects the default; negative disables the timeout
	RateLimit  float64       // requests per second; 0 disables limiting
	Burst      int           // requests allowed at once under RateLimit (default: 1)
	UserAgent  string
	Indicator  LoadingIndicator
	Logger     *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Timeout < 0 {
		o.Timeout = 0
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.UserAgent == "" {
		o.UserAgent = "druggraph/0.1"
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Client looks up drugs on the interaction API.
type Client struct {
	opts    Options
	http    *http.Client
	h3      *http3.Transport
	limiter *rate.Limiter // nil when unlimited
}

// NewClient creates a client with the given options.
func NewClient(opts Options) (*Client, error) {
	opts.applyDefaults()

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (expected http or https)", u.Scheme)
	}

	c := &Client{opts: opts}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst)
	}
	if opts.HTTPClient != nil {
		c.http = opts.HTTPClient
		return c, nil
	}

	tlsConf := &tls.Config{InsecureSkipVerify: opts.Insecure}
	if opts.HTTP3 {
		if u.Scheme != "https" {
			return nil, fmt.Errorf("http3 requires an https base URL, got %s", opts.BaseURL)
		}
		c.h3 = &http3.Transport{TLSClientConfig: tlsConf}
		c.http = &http.Client{Transport: c.h3, Timeout: opts.Timeout}
		return c, nil
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = tlsConf
	c.http = &http.Client{Transport: tr, Timeout: opts.Timeout}
	return c, nil
}

// Close releases pooled connections.
func (c *Client) Close() {
	if c.h3 != nil {
		_ = c.h3.Close()
		return
	}
	c.http.CloseIdleConnections()
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.opts.BaseURL
}

// Fetch retrieves a drug and its interactions. Every failure is a *FetchError
// except ErrEmptyID, which is returned before any request is issued.
func (c *Client) Fetch(ctx context.Context, drugID string) (Drug, error) {
	if drugID == "" {
		return Drug{}, ErrEmptyID
	}

	if ind := c.opts.Indicator; ind != nil {
		ind.Show()
		defer ind.Hide()
	}

	start := time.Now()
	drug, err := c.fetch(ctx, drugID)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	metrics.FetchTotal.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		c.opts.Logger.Debug("drug lookup failed", "drug", drugID, "error", err)
		return Drug{}, err
	}
	c.opts.Logger.Debug("drug lookup", "drug", drugID, "interactions", len(drug.Interactions),
		"duration", time.Since(start))
	return drug, nil
}

func (c *Client) fetch(ctx context.Context, drugID string) (Drug, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Drug{}, &FetchError{Kind: KindNetwork, DrugID: drugID, Err: err}
		}
	}

	endpoint := c.opts.BaseURL + "/id/" + url.PathEscape(drugID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Drug{}, &FetchError{Kind: KindNetwork, DrugID: drugID, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Drug{}, &FetchError{Kind: KindNetwork, DrugID: drugID, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 500:
		return Drug{}, &FetchError{Kind: KindServer, DrugID: drugID, Status: resp.StatusCode}
	default:
		return Drug{}, &FetchError{Kind: KindNotFound, DrugID: drugID, Status: resp.StatusCode}
	}

	var drug Drug
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&drug); err != nil {
		return Drug{}, &FetchError{Kind: KindMalformed, DrugID: drugID, Status: resp.StatusCode, Err: err}
	}
	if drug.ID == "" {
		return Drug{}, &FetchError{
			Kind:   KindMalformed,
			DrugID: drugID,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("response has no drugbankId"),
		}
	}
	return drug, nil
}

func outcome(err error) string {
	switch kindOf(err) {
	case KindNotFound:
		return metrics.OutcomeNotFound
	case KindServer:
		return metrics.OutcomeServer
	case KindNetwork:
		return metrics.OutcomeNetwork
	case KindMalformed:
		return metrics.OutcomeMalformed
	}
	return metrics.OutcomeOK
}
