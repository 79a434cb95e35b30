package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	restPathPrefix   = "/rest/v1"
	maxErrorBodySize = 64 * 1024
)

// Config configures the store client.
type Config struct {
	BaseURL    string
	ServiceKey string
	Schema     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the relational store's REST endpoint. All row payloads are
// JSON arrays keyed by column name, matching the PostgREST wire format.
type Client struct {
	baseURL    *url.URL
	serviceKey string
	schema     string
	httpClient *http.Client
}

// Filter restricts a query to rows matching a column condition.
type Filter struct {
	Column   string
	Operator string
	Value    string
}

// Eq matches rows whose column equals value.
func Eq(column, value string) Filter {
	return Filter{Column: column, Operator: "eq", Value: value}
}

// In matches rows whose column is one of the provided values. Values carrying
// PostgREST list delimiters are double-quoted so they survive as one element.
func In(column string, values []string) Filter {
	elems := make([]string, len(values))
	for i, value := range values {
		elems[i] = quoteListElement(value)
	}
	return Filter{Column: column, Operator: "in", Value: "(" + strings.Join(elems, ",") + ")"}
}

func quoteListElement(value string) string {
	if !strings.ContainsAny(value, `,()" `) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

// ILike matches rows whose column matches the pattern case-insensitively.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Operator: "ilike", Value: pattern}
}

// Query describes a filtered, ordered, paginated selection.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
	Offset     int
}

// NewClient constructs a store client from the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("supabase: base URL is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("supabase: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("supabase: base URL must include scheme and host")
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, fmt.Errorf("supabase: service key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}

	return &Client{
		baseURL:    parsed,
		serviceKey: cfg.ServiceKey,
		schema:     schema,
		httpClient: httpClient,
	}, nil
}

// Select fetches rows from table matching the query and decodes them into dest,
// which must be a pointer to a slice of row structs.
func (c *Client) Select(ctx context.Context, table string, query Query, dest any) error {
	op := "supabase.Select " + table

	req, err := c.newRequest(ctx, http.MethodGet, table, query, nil)
	if err != nil {
		return WrapError(op, err)
	}

	return WrapError(op, c.do(req, dest))
}

// Insert adds rows to table. Rows must be a struct or slice of structs that
// marshal to the table's columns. When dest is non-nil the created rows are
// decoded back into it.
func (c *Client) Insert(ctx context.Context, table string, rows any, dest any) error {
	op := "supabase.Insert " + table

	req, err := c.newRequest(ctx, http.MethodPost, table, Query{}, rows)
	if err != nil {
		return WrapError(op, err)
	}
	if dest != nil {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}

	return WrapError(op, c.do(req, dest))
}

// Update patches rows matching the filters with the given column changes.
// When dest is non-nil the updated rows are decoded back into it.
func (c *Client) Update(ctx context.Context, table string, filters []Filter, changes any, dest any) error {
	op := "supabase.Update " + table

	if len(filters) == 0 {
		return WrapError(op, fmt.Errorf("update requires at least one filter"))
	}

	req, err := c.newRequest(ctx, http.MethodPatch, table, Query{Filters: filters}, changes)
	if err != nil {
		return WrapError(op, err)
	}
	if dest != nil {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}

	return WrapError(op, c.do(req, dest))
}

// Delete removes rows matching the filters.
func (c *Client) Delete(ctx context.Context, table string, filters []Filter) error {
	op := "supabase.Delete " + table

	if len(filters) == 0 {
		return WrapError(op, fmt.Errorf("delete requires at least one filter"))
	}

	req, err := c.newRequest(ctx, http.MethodDelete, table, Query{Filters: filters}, nil)
	if err != nil {
		return WrapError(op, err)
	}

	return WrapError(op, c.do(req, nil))
}

// Ping issues a lightweight request to verify the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	op := "supabase.Ping"

	req, err := c.newRequest(ctx, http.MethodGet, "", Query{}, nil)
	if err != nil {
		return WrapError(op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WrapError(op, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return WrapError(op, newStatusError(op, resp.StatusCode, "", ""))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, table string, query Query, body any) (*http.Request, error) {
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + restPathPrefix
	if table != "" {
		endpoint.Path += "/" + table
	}

	params := url.Values{}
	for _, filter := range query.Filters {
		params.Add(filter.Column, filter.Operator+"."+filter.Value)
	}
	if query.OrderBy != "" {
		direction := "asc"
		if query.Descending {
			direction = "desc"
		}
		params.Set("order", query.OrderBy+"."+direction)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	endpoint.RawQuery = params.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.schema != "public" {
		req.Header.Set("Accept-Profile", c.schema)
		req.Header.Set("Content-Profile", c.schema)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		code, message := decodeErrorBody(resp.Body)
		return newStatusError("", resp.StatusCode, code, message)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func decodeErrorBody(body io.Reader) (code, message string) {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil {
		return "", ""
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", strings.TrimSpace(string(raw))
	}
	message = payload.Message
	if message == "" {
		message = payload.Details
	}
	return payload.Code, message
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodySize))
	_ = body.Close()
}
