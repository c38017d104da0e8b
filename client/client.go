package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/internal/provider/anthropic"
	"github.com/spetersoncode/convo/internal/provider/google"
	"github.com/spetersoncode/convo/internal/provider/openai"
	"github.com/spetersoncode/convo/metrics"
	"github.com/spetersoncode/convo/model"
	"github.com/spetersoncode/convo/retry"
)

// ErrMetricsUnavailable is returned by Metrics before any model call has completed.
var ErrMetricsUnavailable = errors.New("client: metrics unavailable before the first completed model call")

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaultTemperature sets the default temperature for chat requests.
// Per-request options override this default.
func WithDefaultTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, ai.WithTemperature(t))
	}
}

// WithDefaultMaxTokens sets the default max tokens for chat requests.
func WithDefaultMaxTokens(n int) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, ai.WithMaxTokens(n))
	}
}

// WithDefaultChatOptions sets default options for all chat requests.
func WithDefaultChatOptions(opts ...ai.Option) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, opts...)
	}
}

// WithChatProvider bypasses backend construction and sends every request to p.
// Routing, retries, events and metrics still apply.
func WithChatProvider(p ai.ChatProvider) ClientOption {
	return func(c *Client) {
		c.provider = p
	}
}

// Client is a validated handle to one model. The backend is initialized
// lazily on the first request.
type Client struct {
	cfg             Config
	ref             model.Ref
	pricing         model.ChatPricing
	retryConfig     retry.Config
	events          chan<- Event
	defaultChatOpts []ai.Option
	metrics         *metrics.Metrics

	mu       sync.RWMutex
	provider ai.ChatProvider
	initErr  error
}

// New validates cfg and creates a client. Configuration problems are
// reported here, before any request is made, as *ConfigError.
func New(cfg Config, opts ...ClientOption) (*Client, error) {
	ref, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	retryConfig := retry.DefaultConfig()
	if cfg.RetryConfig != nil {
		retryConfig = *cfg.RetryConfig
	}

	c := &Client{
		cfg:         cfg,
		ref:         ref,
		pricing:     model.Lookup(ref),
		retryConfig: retryConfig,
		events:      cfg.Events,
		metrics:     metrics.New(ref.String()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the parsed model reference.
func (c *Client) Model() model.Ref { return c.ref }

// chatProvider returns the backend, initializing it if needed.
func (c *Client) chatProvider(ctx context.Context) (ai.ChatProvider, error) {
	c.mu.RLock()
	if c.provider != nil || c.initErr != nil {
		defer c.mu.RUnlock()
		return c.provider, c.initErr
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.provider != nil || c.initErr != nil {
		return c.provider, c.initErr
	}

	p, err := c.buildProvider(ctx)
	if err != nil {
		c.initErr = fmt.Errorf("client: initialize %s backend: %w", c.providerName(), err)
		return nil, c.initErr
	}
	c.provider = p
	return p, nil
}

func (c *Client) buildProvider(ctx context.Context) (ai.ChatProvider, error) {
	switch c.ref.Provider {
	case ai.ProviderAnthropic:
		opts := []anthropic.ClientOption{anthropic.WithModel(c.ref.Name)}
		if c.cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(c.cfg.BaseURL))
		}
		if c.cfg.HTTPClient != nil {
			opts = append(opts, anthropic.WithHTTPClient(c.cfg.HTTPClient))
		}
		return anthropic.New(c.cfg.APIKey, opts...), nil
	case ai.ProviderGemini, ai.ProviderVertex:
		gc := google.Config{
			APIKey:     c.cfg.APIKey,
			BaseURL:    c.cfg.BaseURL,
			Model:      c.ref.Name,
			HTTPClient: c.cfg.HTTPClient,
		}
		if c.ref.Provider == ai.ProviderVertex {
			gc.Project = c.cfg.VertexProject
			gc.Location = c.cfg.VertexLocation
		}
		return google.New(ctx, gc)
	default:
		opts := []openai.ClientOption{openai.WithModel(c.ref.Name)}
		if base := c.cfg.openAIBaseURL(c.ref.Provider); base != "" {
			opts = append(opts, openai.WithBaseURL(base))
		}
		if c.cfg.HTTPClient != nil {
			opts = append(opts, openai.WithHTTPClient(c.cfg.HTTPClient))
		}
		return openai.New(c.cfg.APIKey, opts...), nil
	}
}

func (c *Client) providerName() ai.Provider {
	if c.ref.Provider == "" {
		return ai.ProviderOpenAI
	}
	return c.ref.Provider
}

// Chat sends a conversation and returns a complete response.
// Transient errors are retried according to the client's retry configuration.
// Every successful call is recorded in the session metrics.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("client: chat: %w", ai.ErrEmptyInput)
	}

	// Prepend default options so per-request options override them
	opts = append(append([]ai.Option(nil), c.defaultChatOpts...), opts...)

	provider := c.providerName()
	chat, err := c.chatProvider(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	emit(c.events, Event{
		Type:      EventRequestStart,
		Operation: "chat",
		Provider:  provider,
		Model:     c.ref.Name,
	})

	var retryEvents chan retry.Event
	var forwarded sync.WaitGroup
	if c.events != nil {
		retryEvents = make(chan retry.Event, 10)
		forwarded.Add(1)
		go func() {
			defer forwarded.Done()
			c.forwardRetryEvents(retryEvents, "chat", provider)
		}()
	}

	var attemptLatency time.Duration
	resp, err := retry.DoWithEvents(ctx, c.retryConfig, retryEvents, func() (*ai.Response, error) {
		attemptStart := time.Now()
		r, err := chat.Chat(ctx, messages, opts...)
		attemptLatency = time.Since(attemptStart)
		return r, err
	})

	if retryEvents != nil {
		close(retryEvents)
		forwarded.Wait()
	}

	if err != nil {
		emit(c.events, Event{
			Type:      EventRequestError,
			Operation: "chat",
			Provider:  provider,
			Model:     c.ref.Name,
			Duration:  time.Since(start),
			Error:     err,
		})
		return nil, err
	}

	cost := c.pricing.Cost(resp.Usage)
	c.metrics.Record(resp.ID, resp.Usage, cost, attemptLatency)

	emit(c.events, Event{
		Type:      EventRequestComplete,
		Operation: "chat",
		Provider:  provider,
		Model:     c.ref.Name,
		Duration:  time.Since(start),
		Usage:     &resp.Usage,
		Cost:      cost,
	})
	return resp, nil
}

// Metrics returns a snapshot of every model call made through this client.
// Before the first completed call it returns ErrMetricsUnavailable.
func (c *Client) Metrics() (*metrics.Snapshot, error) {
	if c.metrics.Calls() == 0 {
		return nil, ErrMetricsUnavailable
	}
	return c.metrics.Snapshot(), nil
}

// forwardRetryEvents reads from a retry events channel and forwards events
// to the client's event channel as EventRetry events.
func (c *Client) forwardRetryEvents(retryEvents <-chan retry.Event, operation string, provider ai.Provider) {
	for re := range retryEvents {
		reCopy := re
		emit(c.events, Event{
			Type:       EventRetry,
			Operation:  operation,
			Provider:   provider,
			Model:      c.ref.Name,
			RetryEvent: &reCopy,
		})
	}
}

var _ ai.ChatProvider = (*Client)(nil)
