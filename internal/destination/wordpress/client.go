// Package wordpress implements the destination side of a sync run against
// a WordPress style content API. Published companies live under a custom
// post type; the client captures a point in time snapshot of what is
// published, then executes the reconciliation plan against it.
package wordpress

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/japanir/equitysync/internal/transport"
	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/logging"
	"github.com/japanir/equitysync/pkg/reconcile"
)

const (
	// DefaultSiteURL is the production site.
	DefaultSiteURL = "https://japanir.jp"

	// companyEndpoint is the custom post type route.
	companyEndpoint = "/wp-json/wp/v2/company"

	// Snapshot paging. The page cap is a safety stop so a misbehaving
	// API cannot loop the listing forever.
	perPage  = 100
	maxPages = 50

	// Locale of the primary post. Translations hang off it per language.
	PrimaryLocale = "ja"

	// requestInterval paces destination writes.
	requestInterval = 500 * time.Millisecond

	// Listing retry bounds for Snapshot pages.
	listRetries    = 3
	listRetryDelay = 2 * time.Second
)

// Post statuses used by the sync.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// Credentials is the static basic auth pair for the REST API.
type Credentials struct {
	Username string
	Password string
}

// Client talks to the content API.
type Client struct {
	http    *transport.Client
	siteURL string
	limiter *rate.Limiter
}

// New creates a client for siteURL (empty selects the default) using the
// given credentials.
func New(siteURL string, creds Credentials) (*Client, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.ErrCredentialsRequired
	}
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	return &Client{
		http:    transport.New("wordpress", &transport.BasicAuth{Username: creds.Username, Password: creds.Password}),
		siteURL: strings.TrimRight(siteURL, "/"),
		limiter: rate.NewLimiter(rate.Every(requestInterval), 1),
	}, nil
}

// WithRequestInterval overrides write pacing. Zero or negative disables it.
func (c *Client) WithRequestInterval(d time.Duration) *Client {
	if d <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
	return c
}

// post is the subset of the API's post representation the sync reads.
type post struct {
	ID        int    `json:"id"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	StockCode string `json:"stock_code"`
	Lang      string `json:"lang"`
}

// Snapshot pages through every published company and returns the
// destination state keyed by securities code. Codes carrying the exchange
// suffix are normalized. The listing stops at the page cap.
func (c *Client) Snapshot(ctx context.Context) (*reconcile.Snapshot, error) {
	var entries []reconcile.DestinationEntry

	offset := 0
	for page := 0; page < maxPages; page++ {
		listURL := fmt.Sprintf("%s%s?per_page=%d&offset=%d&context=edit",
			c.siteURL, companyEndpoint, perPage, offset)
		posts, err := c.listPage(ctx, listURL)
		if err != nil {
			return nil, err
		}
		if len(posts) == 0 {
			break
		}

		for _, p := range posts {
			code := strings.TrimSuffix(p.StockCode, ".T")
			if code == "" {
				continue
			}
			locale := p.Lang
			if locale == "" {
				locale = PrimaryLocale
			}
			entries = append(entries, reconcile.DestinationEntry{
				Code:   code,
				ID:     p.ID,
				Slug:   p.Slug,
				Locale: locale,
			})
		}

		logging.Debug().
			Int("page", page+1).
			Int("batch", len(posts)).
			Int("total", len(entries)).
			Msg("Fetched destination page")

		if len(posts) < perPage {
			break
		}
		offset += perPage
	}

	snapshot := reconcile.NewSnapshot(entries)
	logging.Info().Int("published", snapshot.Len()).Msg("Captured destination snapshot")
	return snapshot, nil
}

// listPage fetches one listing page, retrying transient faults so a brief
// provider hiccup does not abort the whole snapshot.
func (c *Client) listPage(ctx context.Context, listURL string) ([]post, error) {
	return backoff.Retry(ctx, func() ([]post, error) {
		var posts []post
		if err := c.getJSON(ctx, listURL, &posts); err != nil {
			if errors.IsTransient(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return posts, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(listRetryDelay)),
		backoff.WithMaxTries(listRetries),
	)
}

// Translation finds the post id of code's translation in lang, or zero when
// none exists.
func (c *Client) Translation(ctx context.Context, code, lang string) (int, error) {
	var posts []post
	listURL := fmt.Sprintf("%s%s?lang=%s&stock_code=%s&per_page=%d",
		c.siteURL, companyEndpoint, url.QueryEscape(lang), url.QueryEscape(code), perPage)
	if err := c.getJSON(ctx, listURL, &posts); err != nil {
		return 0, err
	}
	for _, p := range posts {
		if strings.TrimSuffix(p.StockCode, ".T") == code {
			return p.ID, nil
		}
	}
	return 0, nil
}

// Create publishes a new company post and returns its assigned id.
func (c *Client) Create(ctx context.Context, body map[string]any) (int, error) {
	var created struct {
		ID int `json:"id"`
	}
	if err := c.postJSON(ctx, c.siteURL+companyEndpoint, body, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// Update overwrites the meta of an existing post.
func (c *Client) Update(ctx context.Context, postID int, body map[string]any) error {
	return c.postJSON(ctx, fmt.Sprintf("%s%s/%d", c.siteURL, companyEndpoint, postID), body, nil)
}

// SetStatus transitions a post, e.g. to draft for an unpublish.
func (c *Client) SetStatus(ctx context.Context, postID int, status string) error {
	return c.Update(ctx, postID, map[string]any{"status": status})
}

func (c *Client) getJSON(ctx context.Context, u string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.http.GetJSON(ctx, u, target)
}

func (c *Client) postJSON(ctx context.Context, u string, body, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.http.PostJSON(ctx, u, body, target)
}
