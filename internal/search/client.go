package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/metrics"
	"github.com/jonathan/competitor-discovery/internal/schemas"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 5 << 20

// noResultsMessage is what SerpAPI puts in "error" when a query simply matched nothing.
const noResultsMessage = "hasn't returned any results"

// Client is a SerpAPI client.
type Client struct {
	cfg        config.SearchConfig
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The configured timeout is not applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a SerpAPI client.
func NewClient(cfg config.SearchConfig, log logrus.FieldLogger, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure Client implements Searcher
var _ Searcher = (*Client)(nil)

// Search runs query with the configured engine.
func (c *Client) Search(ctx context.Context, query string, limit int) Response {
	return c.Do(ctx, Request{Query: query, Limit: limit})
}

// Do runs a search. It never returns an error: failures are logged and come
// back as an empty Response with Err set.
func (c *Client) Do(ctx context.Context, req Request) Response {
	resp := c.do(ctx, req)
	metrics.RecordSearch(len(resp.OrganicResults), resp.Err)
	if resp.Err != nil {
		c.log.WithField("query", req.Query).WithError(resp.Err).Warn("search failed")
	}
	return resp
}

func (c *Client) do(ctx context.Context, req Request) Response {
	if c.cfg.APIKey == "" {
		return Response{Err: &Error{Query: req.Query, Message: "request not sent", Cause: ErrMissingAPIKey}}
	}

	endpoint, err := c.endpoint(req)
	if err != nil {
		return Response{Err: &Error{Query: req.Query, Message: "invalid base URL", Cause: err}}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{Err: &Error{Query: req.Query, Message: "failed to create request", Cause: redact(err)}}
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{Err: &Error{Query: req.Query, Message: "request failed", Cause: redact(err)}}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return Response{Err: &Error{Query: req.Query, StatusCode: res.StatusCode, Message: "failed to read body", Cause: err}}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Response{Err: &Error{
			Query:      req.Query,
			StatusCode: res.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}}
	}

	if err := schemas.Validate(schemas.SerpResponse, body); err != nil {
		return Response{Err: &Error{Query: req.Query, StatusCode: res.StatusCode, Message: "unexpected response shape", Cause: err}}
	}

	var payload struct {
		OrganicResults []Result `json:"organic_results"`
		Error          string   `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Response{Err: &Error{Query: req.Query, StatusCode: res.StatusCode, Message: "failed to decode response", Cause: err}}
	}

	if payload.Error != "" && len(payload.OrganicResults) == 0 {
		if strings.Contains(payload.Error, noResultsMessage) {
			return Response{}
		}
		return Response{Err: &Error{Query: req.Query, StatusCode: res.StatusCode, Message: payload.Error}}
	}

	return Response{OrganicResults: payload.OrganicResults}
}

// endpoint builds the search.json URL for req.
func (c *Client) endpoint(req Request) (string, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base URL %q is not absolute", c.cfg.BaseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/search.json"

	engine := req.Engine
	if engine == "" {
		engine = c.cfg.Engine
	}
	limit := req.Limit
	if limit <= 0 {
		limit = c.cfg.Limit
	}

	q := url.Values{}
	q.Set("engine", engine)
	q.Set("q", req.Query)
	if limit > 0 {
		q.Set("num", strconv.Itoa(limit))
	}
	q.Set("api_key", c.cfg.APIKey)
	base.RawQuery = q.Encode()

	return base.String(), nil
}

// redact strips the api_key query parameter from URLs carried in transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			q := u.Query()
			if q.Has("api_key") {
				q.Set("api_key", "REDACTED")
				u.RawQuery = q.Encode()
				urlErr.URL = u.String()
			}
		}
	}
	return err
}
