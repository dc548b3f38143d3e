// Package yahoo is the HTTP client for the market-data service that fronts
// Yahoo Finance (quotes, candles, fundamentals, analyst consensus, calendar,
// news, profile and symbol search).
package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TrueSignal/internal/domain/models"
	drepo "TrueSignal/internal/domain/repository"
	xhttp "TrueSignal/pkg/http"
	xlogger "TrueSignal/pkg/logger"
)

const defaultTimeout = 12 * time.Second

var (
	ErrTimeout  = fmt.Errorf("yahoo api: %w", drepo.ErrUpstreamTimeout)
	ErrUpstream = fmt.Errorf("yahoo api: %w", drepo.ErrUpstream)
)

// Client implements repository.MarketData over the market-data REST service.
type Client struct {
	baseURL string
	http    *xhttp.Client
	logger  *xlogger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport, mostly for tests.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(l *xlogger.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client rooted at baseURL. Each request is bounded by timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:  xlogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ drepo.MarketData = (*Client)(nil)

func (c *Client) Search(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	var res models.SearchResult
	if err := c.get(ctx, "/search", params{"query": query}, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// Quote returns the quote for symbol. The service answers with an object keyed
// by symbol; a missing key yields an empty quote, not an error.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var byTicker map[string]json.RawMessage
	if err := c.get(ctx, "/quote", params{"symbols": symbol}, &byTicker); err != nil {
		return nil, err
	}
	raw, ok := byTicker[symbol]
	if !ok || isNull(raw) {
		return &models.Quote{Raw: json.RawMessage(`{}`)}, nil
	}
	var q models.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("%w: decode quote: %v", ErrUpstream, err)
	}
	q.Raw = raw
	return &q, nil
}

func (c *Client) History(ctx context.Context, symbol string, interval drepo.Timeframe, rangeDays int) (*models.History, error) {
	var h models.History
	p := params{
		"ticker":   symbol,
		"interval": string(interval),
		"range_":   strconv.Itoa(rangeDays) + "d",
	}
	if err := c.get(ctx, "/history", p, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) Fundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	var f models.Fundamentals
	raw, err := c.getRaw(ctx, "/fundamentals", params{"ticker": symbol}, &f)
	if err != nil {
		return nil, err
	}
	f.Raw = raw
	return &f, nil
}

func (c *Client) Analyst(ctx context.Context, symbol string) (*models.AnalystConsensus, error) {
	var a models.AnalystConsensus
	raw, err := c.getRaw(ctx, "/analyst", params{"ticker": symbol}, &a)
	if err != nil {
		return nil, err
	}
	a.Raw = raw
	return &a, nil
}

func (c *Client) Calendar(ctx context.Context, symbol string) (*models.Calendar, error) {
	var cal models.Calendar
	if err := c.get(ctx, "/calendar", params{"ticker": symbol}, &cal); err != nil {
		return nil, err
	}
	return &cal, nil
}

// News accepts both {"news":[...]} and a bare array.
func (c *Client) News(ctx context.Context, symbol string, maxArticles int) ([]models.RawNewsItem, error) {
	var body []byte
	p := params{"ticker": symbol, "max_articles": strconv.Itoa(maxArticles)}
	if err := c.get(ctx, "/news", p, &body); err != nil {
		return nil, err
	}
	return decodeNews(body), nil
}

func (c *Client) Profile(ctx context.Context, symbol string) (models.Profile, error) {
	var body []byte
	if err := c.get(ctx, "/profile", params{"ticker": symbol}, &body); err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: profile is not JSON", ErrUpstream)
	}
	return models.Profile(body), nil
}

type params map[string]string

func (c *Client) get(ctx context.Context, path string, p params, dest interface{}) error {
	q := make(url.Values, len(p))
	for k, v := range p {
		q.Set(k, v)
	}
	start := time.Now()
	err := c.http.Get(ctx, c.baseURL+path, q, dest)
	if err != nil {
		err = mapError(path, err)
		c.logger.Warn("yahoo.request_failed",
			xlogger.String("path", path),
			xlogger.Duration("took", time.Since(start)),
			xlogger.Error(err),
		)
		return err
	}
	c.logger.Debug("yahoo.request", xlogger.String("path", path), xlogger.Duration("took", time.Since(start)))
	return nil
}

// getRaw decodes into dest and also returns the payload for pass-through.
func (c *Client) getRaw(ctx context.Context, path string, p params, dest interface{}) (json.RawMessage, error) {
	var body []byte
	if err := c.get(ctx, path, p, &body); err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if isNull(body) {
		return json.RawMessage(`{}`), nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return json.RawMessage(body), nil
}

func mapError(path string, err error) error {
	var se *xhttp.StatusError
	switch {
	case errors.Is(err, xhttp.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: request timed out", ErrTimeout, path)
	case errors.As(err, &se):
		detail := se.Body
		if detail == "" {
			detail = "Upstream failure"
		}
		if se.Status == 404 {
			return fmt.Errorf("%w: %s %d: %s: %w", ErrUpstream, path, se.Status, detail, drepo.ErrNotFound)
		}
		return fmt.Errorf("%w: %s %d: %s", ErrUpstream, path, se.Status, detail)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
}

func decodeNews(body []byte) []models.RawNewsItem {
	var wrapped struct {
		News []models.RawNewsItem `json:"news"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.News != nil {
		return wrapped.News
	}
	var list []models.RawNewsItem
	if err := json.Unmarshal(body, &list); err == nil {
		return list
	}
	return []models.RawNewsItem{}
}

func isNull(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}
