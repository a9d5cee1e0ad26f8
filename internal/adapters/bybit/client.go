package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/ports"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.bybit.com"

	// /v5/execution/list: 10 req/s por UID → 60% → 6/s.
	defaultRatePerSec = 6

	defaultRecvWindow = 5000
	defaultCategory   = "spot"
	defaultPageLimit  = 100
	defaultMaxPages   = 1000

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Options ajusta el comportamiento del cliente. Los valores cero usan los defaults.
type Options struct {
	Category   string  // categoría de producto de Bybit, "spot" por defecto
	PageLimit  int     // fills por página (máx 100 en la API)
	MaxPages   int     // corta la paginación si el cursor no termina
	RatePerSec float64 // requests por segundo al endpoint de ejecuciones
	RecvWindow int     // ms que Bybit acepta de desfase en el timestamp
	Timeout    time.Duration
	RetryWait  time.Duration // base del backoff exponencial
}

// Client es el HTTP client de Bybit v5 con rate limiting, firma HMAC y retries.
type Client struct {
	http       *http.Client
	baseURL    string
	limiter    *rate.Limiter
	category   string
	pageLimit  int
	maxPages   int
	recvWindow int
	retryWait  time.Duration
	now        func() time.Time
}

// NewClient crea un Client contra baseURL. Si baseURL está vacío usa producción.
func NewClient(baseURL string, opts Options) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if opts.Category == "" {
		opts.Category = defaultCategory
	}
	if opts.PageLimit <= 0 || opts.PageLimit > defaultPageLimit {
		opts.PageLimit = defaultPageLimit
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = defaultRatePerSec
	}
	if opts.RecvWindow <= 0 {
		opts.RecvWindow = defaultRecvWindow
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = baseRetryWait
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 2),
		category:   opts.Category,
		pageLimit:  opts.PageLimit,
		maxPages:   opts.MaxPages,
		recvWindow: opts.RecvWindow,
		retryWait:  opts.RetryWait,
		now:        time.Now,
	}
}

// getSigned hace un GET autenticado con rate limiting y retries.
// La firma se regenera en cada intento para que el timestamp no caduque.
func (c *Client) getSigned(ctx context.Context, creds signer, path, query string, out any) error {
	url := c.baseURL + path
	if query != "" {
		url += "?" + query
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range creds.headers(c.now(), c.recvWindow, query) {
			req.Header.Set(k, v)
		}
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if attempt == maxRetries {
				return fmt.Errorf("%w: request failed after %d retries: %v", ports.ErrExchangeUnavailable, maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by Bybit", "attempt", attempt+1)
			if attempt == maxRetries {
				return fmt.Errorf("%w: status 429 after %d retries", ports.ErrRateLimited, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("%w: server error %d after %d retries", ports.ErrExchangeUnavailable, resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("%w: status %d: %s", ports.ErrAuthenticationFailed, resp.StatusCode, string(body))
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("%w: client error %d: %s", ports.ErrExchangeRejected, resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ports.ErrExchangeUnavailable, err)
		}
		return nil
	}
	return fmt.Errorf("%w: exhausted %d retries", ports.ErrExchangeUnavailable, maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := c.retryWait << attempt
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
