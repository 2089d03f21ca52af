// Package client implements the Supabase contract the Amooora backend is
// built against: PostgREST table queries, stored-procedure calls, auth user
// lookup and object storage.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned for single-row queries that match no row
// (PostgREST code PGRST116). Callers treat this as a null result, not a
// hard failure.
var ErrNotFound = errors.New("supabase: row not found")

// Doer abstracts the HTTP client so the resilient wrapper can be swapped in.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a Supabase project.
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	httpClient  Doer
}

// Config holds client configuration.
type Config struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL string
	// APIKey is the anon or service-role key.
	APIKey string
	// HTTPClient overrides the default transport. NewResilientClient
	// satisfies this.
	HTTPClient Doer
}

// New creates a Supabase client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// WithAccessToken returns a copy of the client that authorizes requests with
// the given user token instead of the API key, so row-level security applies
// to the acting user.
func (c *Client) WithAccessToken(token string) *Client {
	clone := *c
	clone.accessToken = token
	return &clone
}

// From starts a query builder for a table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table, limit: -1, offset: -1}
}

// QueryBuilder accumulates PostgREST query parameters.
type QueryBuilder struct {
	client  *Client
	table   string
	columns string
	filters []string
	orders  []string
	limit   int
	offset  int
	single  bool
}

// Select specifies the columns (and embedded resources) to return.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=eq.%v", column, value))
	return q
}

// Is adds an IS filter, for null, true and false.
func (q *QueryBuilder) Is(column string, value string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=is.%s", column, value))
	return q
}

// In adds an IN filter.
func (q *QueryBuilder) In(column string, values []string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=in.(%s)", column, strings.Join(values, ",")))
	return q
}

// ILike adds a case-insensitive pattern filter.
func (q *QueryBuilder) ILike(column, pattern string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=ilike.%s", column, pattern))
	return q
}

// Order appends an ORDER BY key. Keys apply in call order, so the multi-key
// feed ranking is expressed as four successive calls.
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, fmt.Sprintf("%s.%s", column, dir))
	return q
}

// Limit sets the maximum row count.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Offset sets the starting row.
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.offset = n
	return q
}

// Range requests rows [from, to] inclusive, PostgREST style.
func (q *QueryBuilder) Range(from, to int) *QueryBuilder {
	q.offset = from
	q.limit = to - from + 1
	return q
}

// Single requests exactly one row; no match yields ErrNotFound.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

func (q *QueryBuilder) params() url.Values {
	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		parts := strings.SplitN(f, "=", 2)
		if len(parts) == 2 {
			params.Add(parts[0], parts[1])
		}
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit >= 0 {
		params.Set("limit", fmt.Sprintf("%d", q.limit))
	}
	if q.offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", q.offset))
	}
	return params
}

func (q *QueryBuilder) url() string {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)
	if params := q.params(); len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

// Execute runs the SELECT and returns the raw response.
func (q *QueryBuilder) Execute(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(req)
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	return q.client.do(req)
}

// Get runs the SELECT and decodes the rows into dst.
func (q *QueryBuilder) Get(ctx context.Context, dst any) error {
	resp, err := q.Execute(ctx)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.JSON(dst)
}

// Insert posts a row and decodes the returned representation into dst
// (may be nil).
func (q *QueryBuilder) Insert(ctx context.Context, data, dst any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.url(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := q.client.do(req)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	return resp.JSON(dst)
}

// Update patches the filtered rows and decodes the representation into dst
// (may be nil).
func (q *QueryBuilder) Update(ctx context.Context, data, dst any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, q.url(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := q.client.do(req)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	return resp.JSON(dst)
}

// Delete removes the filtered rows.
func (q *QueryBuilder) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, q.url(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(req)

	resp, err := q.client.do(req)
	if err != nil {
		return err
	}
	return resp.Err()
}

// RPC calls a stored procedure under /rest/v1/rpc.
func (c *Client) RPC(ctx context.Context, fn string, params any) (*Response, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)

	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

// AuthUser is the subset of the Supabase auth user the backend cares about.
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// GetUser resolves an access token to its user via the auth endpoint. Used
// when no JWT secret is configured for local verification.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	reqURL := fmt.Sprintf("%s/auth/v1/user", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var user AuthUser
	if err := resp.JSON(&user); err != nil {
		return nil, fmt.Errorf("decode auth user: %w", err)
	}
	return &user, nil
}

// Storage returns the object storage client.
func (c *Client) Storage() *StorageClient {
	return &StorageClient{client: c}
}

// StorageClient uploads and serves objects from Supabase storage buckets.
type StorageClient struct {
	client *Client
}

// Upload stores an object and returns its public URL.
func (s *StorageClient) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.client.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	s.client.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.do(req)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	return s.PublicURL(bucket, path), nil
}

// PublicURL builds the public object URL for a bucket path.
func (s *StorageClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.client.baseURL, bucket, path)
}

// Delete removes objects from a bucket.
func (s *StorageClient) Delete(ctx context.Context, bucket string, paths []string) error {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s", s.client.baseURL, bucket)

	body, _ := json.Marshal(map[string][]string{"prefixes": paths})
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.do(req)
	if err != nil {
		return err
	}
	return resp.Err()
}

// Response is a raw PostgREST response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Err maps failure responses to errors. PGRST116 (no row matched a
// single-row request) maps to ErrNotFound.
func (r *Response) Err() error {
	if r.StatusCode < 400 {
		return nil
	}

	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &errResp); err == nil {
		if errResp.Code == "PGRST116" {
			return ErrNotFound
		}
		if errResp.Message != "" {
			return fmt.Errorf("supabase: %s", errResp.Message)
		}
		if errResp.Error != "" {
			return fmt.Errorf("supabase: %s", errResp.Error)
		}
	}
	if r.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return fmt.Errorf("supabase: status %d", r.StatusCode)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	token := c.accessToken
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}
