// Package telemetry provides optional product telemetry. Events carry
// counts and modes only, never prompt text or profile contents, and the
// whole package is a no-op unless an API key is configured.
package telemetry

import (
	"log/slog"
	"sync"

	"github.com/posthog/posthog-go"
)

// Client is the interface for telemetry clients. The abstraction keeps
// tests and the disabled path free of any network dependency.
type Client interface {
	// Track sends an event asynchronously; a no-op when disabled.
	Track(event string, properties map[string]any)

	// Close flushes pending events and closes the client.
	Close() error
}

// Noop is the disabled client.
type Noop struct{}

func (Noop) Track(string, map[string]any) {}
func (Noop) Close() error                 { return nil }

// Config holds the client settings.
type Config struct {
	Enabled    bool
	APIKey     string
	Endpoint   string
	DistinctID string
}

// posthogClient wraps the PostHog SDK.
type posthogClient struct {
	mu     sync.Mutex
	client posthog.Client
	id     string
}

// NewClient builds a telemetry client. Missing consent or API key yields
// the no-op client, never an error.
func NewClient(cfg Config) Client {
	if !cfg.Enabled || cfg.APIKey == "" {
		return Noop{}
	}

	phCfg := posthog.Config{}
	if cfg.Endpoint != "" {
		phCfg.Endpoint = cfg.Endpoint
	}
	client, err := posthog.NewWithConfig(cfg.APIKey, phCfg)
	if err != nil {
		slog.Warn("telemetry disabled: client init failed", "error", err)
		return Noop{}
	}

	id := cfg.DistinctID
	if id == "" {
		id = "anonymous"
	}
	return &posthogClient{client: client, id: id}
}

func (c *posthogClient) Track(event string, properties map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	if err := c.client.Enqueue(posthog.Capture{
		DistinctId: c.id,
		Event:      event,
		Properties: props,
	}); err != nil {
		slog.Debug("telemetry enqueue failed", "event", event, "error", err)
	}
}

func (c *posthogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}
