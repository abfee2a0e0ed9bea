package equitysync

import (
	"time"

	"github.com/japanir/equitysync/pkg/fetch"
)

// Option is a function that configures a Client instance
type Option func(*config) error

// config collects everything a run needs. File and environment values load
// first; options layered by the caller win.
type config struct {
	configPath   string
	registryPath string

	workers         int
	batchSize       int
	batchDelay      time.Duration
	maxAttempts     int
	retryDelay      time.Duration
	retryValidation bool

	limit  int
	skip   int
	ticker string

	dryRun          bool
	updateOnly      bool
	autoUnpublish   bool
	createStatus    string
	fromDestination bool

	providerBaseURL string
	siteURL         string
	outputDir       string

	// source overrides the provider client, used by tests.
	source fetch.Source
	// destination overrides the content API client, used by tests.
	destination Destination
}

func defaultConfig() *config {
	return &config{}
}

// WithConfigFile points the client at a YAML configuration file.
func WithConfigFile(path string) Option {
	return func(c *config) error {
		c.configPath = path
		return nil
	}
}

// WithRegistry overrides the registry CSV path.
func WithRegistry(path string) Option {
	return func(c *config) error {
		c.registryPath = path
		return nil
	}
}

// WithWorkers sets concurrent fetches per batch.
func WithWorkers(n int) Option {
	return func(c *config) error {
		c.workers = n
		return nil
	}
}

// WithBatchSize sets how many codes each batch holds.
func WithBatchSize(n int) Option {
	return func(c *config) error {
		c.batchSize = n
		return nil
	}
}

// WithBatchDelay sets the cool down between batches.
func WithBatchDelay(d time.Duration) Option {
	return func(c *config) error {
		c.batchDelay = d
		return nil
	}
}

// WithRetry sets the per code attempt bound and the pause between attempts.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(c *config) error {
		c.maxAttempts = maxAttempts
		c.retryDelay = delay
		return nil
	}
}

// WithRetryValidation retries validation failures instead of treating them
// as terminal.
func WithRetryValidation(enabled bool) Option {
	return func(c *config) error {
		c.retryValidation = enabled
		return nil
	}
}

// WithLimit caps how many registry entries a run processes. Zero means all.
func WithLimit(n int) Option {
	return func(c *config) error {
		c.limit = n
		return nil
	}
}

// WithSkip drops the first n registry entries.
func WithSkip(n int) Option {
	return func(c *config) error {
		c.skip = n
		return nil
	}
}

// WithTicker restricts the run to a single securities code.
func WithTicker(code string) Option {
	return func(c *config) error {
		c.ticker = code
		return nil
	}
}

// WithDryRun computes and previews the plan without touching the
// destination.
func WithDryRun(enabled bool) Option {
	return func(c *config) error {
		c.dryRun = enabled
		return nil
	}
}

// WithUpdateOnly downgrades creates to skips.
func WithUpdateOnly(enabled bool) Option {
	return func(c *config) error {
		c.updateOnly = enabled
		return nil
	}
}

// WithAutoUnpublish drafts published codes whose fetch failed.
func WithAutoUnpublish(enabled bool) Option {
	return func(c *config) error {
		c.autoUnpublish = enabled
		return nil
	}
}

// WithCodesFromDestination takes the identifier list for document runs
// from the destination's published companies instead of the CSV registry.
func WithCodesFromDestination(enabled bool) Option {
	return func(c *config) error {
		c.fromDestination = enabled
		return nil
	}
}

// WithCreateStatus sets the status new posts are created with.
func WithCreateStatus(status string) Option {
	return func(c *config) error {
		c.createStatus = status
		return nil
	}
}

// WithProviderURL points at a non default market data endpoint.
func WithProviderURL(url string) Option {
	return func(c *config) error {
		c.providerBaseURL = url
		return nil
	}
}

// WithSiteURL points at a non default destination site.
func WithSiteURL(url string) Option {
	return func(c *config) error {
		c.siteURL = url
		return nil
	}
}

// WithOutputDir sets where run CSVs land.
func WithOutputDir(dir string) Option {
	return func(c *config) error {
		c.outputDir = dir
		return nil
	}
}

// WithSource injects a fetch source in place of the provider client.
func WithSource(source fetch.Source) Option {
	return func(c *config) error {
		c.source = source
		return nil
	}
}

// WithDestination injects a destination in place of the content API client.
func WithDestination(dest Destination) Option {
	return func(c *config) error {
		c.destination = dest
		return nil
	}
}
