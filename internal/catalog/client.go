package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"book-assistant/backend/internal/apperr"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/metrics"
	"book-assistant/backend/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	serviceName = "catalog"
	userAgent   = "book-assistant/1.0"
	// maxBodyBytes bounds how much of a catalog response is decoded.
	maxBodyBytes = 4 << 20
)

// Filter narrows a book listing. Zero values are not sent.
type Filter struct {
	Category  string
	Query     string
	CanBorrow *bool
	Limit     int
}

func (f Filter) values() url.Values {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.CanBorrow != nil {
		v.Set("canBorrow", strconv.FormatBool(*f.CanBorrow))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// Client talks to the catalog HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a catalog client. rps paces outgoing calls.
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// ListBooks returns the books matching filter.
func (c *Client) ListBooks(ctx context.Context, filter Filter) ([]model.Book, error) {
	u := c.baseURL + "/books"
	if q := filter.values().Encode(); q != "" {
		u += "?" + q
	}

	var books []model.Book
	if err := c.get(ctx, "list", u, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Recommend returns n recommended books.
func (c *Client) Recommend(ctx context.Context, n int) ([]model.Book, error) {
	if n <= 0 {
		return nil, fmt.Errorf("recommendation count must be positive, got %d", n)
	}
	u := fmt.Sprintf("%s/books/recommendation?count=%d", c.baseURL, n)

	var books []model.Book
	if err := c.get(ctx, "recommend", u, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) get(ctx context.Context, op, u string, target interface{}) (err error) {
	start := time.Now()
	log := logger.Component(ctx, serviceName)
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
			log.WithError(err).WithField("op", op).Warn("catalog request failed")
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(serviceName, outcome).Inc()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return upstream(op, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return upstream(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstream(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		uerr := upstream(op, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
		uerr.RateLimited = resp.StatusCode == http.StatusTooManyRequests
		return uerr
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(target); err != nil {
		return upstream(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	log.WithFields(logrus.Fields{
		"op":       op,
		"duration": time.Since(start).String(),
	}).Debug("catalog request completed")
	return nil
}

func upstream(op string, status int, err error) *apperr.UpstreamError {
	return &apperr.UpstreamError{
		Service:    serviceName,
		Op:         op,
		StatusCode: status,
		Err:        err,
	}
}
