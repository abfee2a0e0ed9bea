// Package equitysync keeps a content site's company pages in step with
// market data. A run fetches per company attributes from the provider in
// rate limited batches, reconciles the results against the company registry
// and the site's published state, and executes the resulting plan.
package equitysync

import (
	"context"

	appcfg "github.com/japanir/equitysync/internal/config"
	"github.com/japanir/equitysync/internal/destination/wordpress"
	"github.com/japanir/equitysync/internal/sources/marketdata"
	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/fetch"
	"github.com/japanir/equitysync/pkg/reconcile"
	"github.com/japanir/equitysync/pkg/registry"
)

// Destination executes a reconciliation plan against the content API.
// Implemented by the wordpress client; tests substitute their own.
type Destination interface {
	Snapshot(ctx context.Context) (*reconcile.Snapshot, error)
	Execute(ctx context.Context, actions []reconcile.Action, opts wordpress.ExecOptions) (*reconcile.RunStats, error)
}

// Client runs fetch and sync pipelines for one configuration.
type Client struct {
	run  *config
	file *appcfg.Config
}

// New creates a client from options layered over the configuration file
// and environment.
func New(opts ...Option) (*Client, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	fileCfg, err := appcfg.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.merge(fileCfg)

	return &Client{run: c, file: fileCfg}, nil
}

// merge fills unset option fields from the file configuration.
func (c *config) merge(f *appcfg.Config) {
	if c.registryPath == "" {
		c.registryPath = f.Registry.Path
	}
	if c.workers == 0 {
		c.workers = f.Fetch.Workers
	}
	if c.batchSize == 0 {
		c.batchSize = f.Fetch.BatchSize
	}
	if c.batchDelay == 0 {
		c.batchDelay = f.Fetch.BatchDelay
	}
	if c.maxAttempts == 0 {
		c.maxAttempts = f.Fetch.MaxAttempts
	}
	if c.retryDelay == 0 {
		c.retryDelay = f.Fetch.RetryDelay
	}
	if !c.retryValidation {
		c.retryValidation = f.Fetch.RetryValidation
	}
	if c.providerBaseURL == "" {
		c.providerBaseURL = f.Provider.BaseURL
	}
	if c.siteURL == "" {
		c.siteURL = f.Destination.SiteURL
	}
	if c.outputDir == "" {
		c.outputDir = f.Output.Dir
	}
}

// loadRegistry loads and narrows the registry for this run.
func (c *Client) loadRegistry() (*registry.Registry, error) {
	reg, err := registry.Load(c.run.registryPath)
	if err != nil {
		return nil, err
	}
	return reg.Select(c.run.ticker, c.run.skip, c.run.limit)
}

// source returns the fetch source, building the provider client unless one
// was injected.
func (c *Client) source() fetch.Source {
	if c.run.source != nil {
		return c.run.source
	}
	return marketdata.New(c.run.providerBaseURL)
}

// provider returns the market data client for document runs. Injected
// sources cannot serve those.
func (c *Client) provider() *marketdata.Client {
	return marketdata.New(c.run.providerBaseURL)
}

// destination returns the content API client, unless one was injected.
func (c *Client) destination() (Destination, error) {
	if c.run.destination != nil {
		return c.run.destination, nil
	}
	creds, err := c.file.Credentials()
	if err != nil {
		return nil, err
	}
	return wordpress.New(c.run.siteURL, creds)
}

// scheduler builds the batch scheduler over the run's source.
func (c *Client) scheduler() *fetch.Scheduler {
	engine := fetch.NewEngine(c.source(), fetch.EngineConfig{
		MaxAttempts:     c.run.maxAttempts,
		RetryDelay:      c.run.retryDelay,
		RetryValidation: c.run.retryValidation,
	})
	return fetch.NewScheduler(engine, fetch.SchedulerConfig{
		BatchSize:  c.run.batchSize,
		Workers:    c.run.workers,
		BatchDelay: c.run.batchDelay,
	})
}

// validateTicker rejects malformed single ticker filters early.
func validateTicker(code string) error {
	if code == "" {
		return nil
	}
	if !registry.ValidCode(registry.NormalizeCode(code)) {
		return errors.NewValidationError("ticker", code, "must be a four character alphanumeric code")
	}
	return nil
}
