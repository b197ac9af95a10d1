package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client sends usage events. Track never blocks the caller.
type Client interface {
	Track(event string, properties Properties)
	Close() error
}

// enqueuer is the subset of posthog.Client used here.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient delivers events to PostHog.
type PostHogClient struct {
	mu          sync.RWMutex
	client      enqueuer
	config      *Config
	version     string
	initialized bool
}

// ClientConfig holds configuration for New.
type ClientConfig struct {
	APIKey  string
	Version string
	Config  *Config
	// Endpoint overrides the PostHog cloud endpoint for self-hosted instances.
	Endpoint string
}

// New returns a PostHog-backed client when an API key is configured and
// the user opted in, and a NoopClient otherwise.
func New(cfg ClientConfig) Client {
	if cfg.APIKey == "" || cfg.Config == nil || !cfg.Config.IsEnabled() {
		return NoopClient{}
	}
	c, err := NewPostHogClient(cfg)
	if err != nil {
		return NoopClient{}
	}
	return c
}

// NewPostHogClient creates a PostHog client. Without an API key or
// config the returned client is inert.
func NewPostHogClient(cfg ClientConfig) (*PostHogClient, error) {
	if cfg.APIKey == "" || cfg.Config == nil {
		return &PostHogClient{config: cfg.Config, version: cfg.Version}, nil
	}

	phConfig := posthog.Config{
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return &PostHogClient{
		client:      client,
		config:      cfg.Config,
		version:     cfg.Version,
		initialized: true,
	}, nil
}

func newPostHogClientWithEnqueuer(enq enqueuer, cfg *Config, version string) *PostHogClient {
	return &PostHogClient{
		client:      enq,
		config:      cfg,
		version:     version,
		initialized: true,
	}
}

// Track enqueues an event. No-op unless initialized and enabled.
func (c *PostHogClient) Track(event string, properties Properties) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized || c.config == nil || !c.config.IsEnabled() {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("cli_version", c.version)
	// Never create person profiles.
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.config.AnonymousID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes queued events.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized || c.client == nil {
		return nil
	}
	c.initialized = false
	return c.client.Close()
}

// NoopClient discards every event.
type NoopClient struct{}

func (NoopClient) Track(string, Properties) {}

func (NoopClient) Close() error { return nil }

type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}
