package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/komparator/backend/internal/domain"
	"github.com/komparator/backend/internal/pkg/metrics"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:60.0) Gecko/20100101 Firefox/60.0"

// Options configures a Client
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
	Parallelism       int
	RandomDelay       time.Duration
	BackoffBase       time.Duration
}

// Client fetches marketplace pages. One colly backend is shared by every
// request so connections and cookies are reused across workers.
type Client struct {
	collector   *colly.Collector
	rateLimiter *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	captcha     CaptchaSolver
	logger      *zap.Logger
	debug       bool
}

// NewClient creates a new page fetch client
func NewClient(opts Options, captcha CaptchaSolver, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if captcha == nil {
		captcha = NewNoopCaptchaSolver(logger)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(opts.Timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: opts.Parallelism,
		RandomDelay: opts.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("failed to set fetch limits: %w", err)
	}

	return &Client{
		collector:   c,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		captcha:     captcha,
		logger:      logger.Named("fetch"),
	}, nil
}

// SetDebug enables per-request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Fetch retrieves a page. Any non-2xx status is an error; 503 is reported as
// domain.ErrLikelyBlocked and never retried.
func (c *Client) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		start := time.Now()
		body, status, err := c.visit(pageURL)
		metrics.ObserveFetch(status, time.Since(start))

		if err == nil {
			if c.debug {
				c.logger.Debug("page fetched",
					zap.String("url", pageURL),
					zap.Int("status", status),
					zap.Int("bytes", len(body)),
					zap.Duration("elapsed", time.Since(start)))
			}
			return body, nil
		}

		if status == http.StatusServiceUnavailable {
			if solveErr := c.captcha.Solve(ctx, pageURL); solveErr != nil {
				c.logger.Warn("captcha solver failed", zap.String("url", pageURL), zap.Error(solveErr))
			}
			return nil, fmt.Errorf("%w: status %d", domain.ErrLikelyBlocked, status)
		}

		lastErr = fmt.Errorf("%w: status %d: %v", domain.ErrFetchFailed, status, err)
		c.logger.Debug("fetch attempt failed",
			zap.String("url", pageURL),
			zap.Int("attempt", attempt),
			zap.Int("status", status),
			zap.Error(err))

		// Client errors will not change on retry
		if status >= 400 && status < 500 {
			return nil, lastErr
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(exponentialBackoff(c.backoffBase, attempt)):
			}
		}
	}

	return nil, lastErr
}

// visit performs one GET on a clone of the shared collector
func (c *Client) visit(pageURL string) ([]byte, int, error) {
	collector := c.collector.Clone()

	var body []byte
	status := 0
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		return nil, status, err
	}
	collector.Wait()

	return body, status, nil
}

// exponentialBackoff returns base, 2*base, 4*base... for attempts 1, 2, 3...
func exponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<uint(attempt-1))
}
