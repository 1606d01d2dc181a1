// Package adminclient talks to the dispatch console admin API.
package adminclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/stats"
	"go.uber.org/zap"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 200 * time.Millisecond
	defaultBackoffMax  = 2 * time.Second
	fetchPageSize      = 100
)

type Client struct {
	http        *resty.Client
	baseURL     string
	token       string
	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

type Option func(*Client)

// WithToken authenticates every request with a bearer admin token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithHTTPClient(client *resty.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetry configures read retries. maxRetries of zero disables them.
func WithRetry(maxRetries int, base time.Duration, maxBackoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if base > 0 {
			c.backoffBase = base
		}
		if maxBackoff > 0 {
			c.backoffMax = maxBackoff
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("admin api base url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid admin api base url: %w", err)
	}

	c := &Client{
		baseURL:     trimmed,
		maxRetries:  defaultMaxRetries,
		backoffBase: defaultBackoffBase,
		backoffMax:  defaultBackoffMax,
		sleep:       sleepWithContext,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = resty.New()
	}
	if c.http.GetClient().Timeout == 0 {
		c.http.SetTimeout(defaultTimeout)
	}
	// Retries are driven by doRead so mutations are never replayed.
	c.http.SetRetryCount(0)

	return c, nil
}

// Application is a credential pair as returned by the admin API.
type Application struct {
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"createdAt"`
}

type Credentials struct {
	Name   string `json:"name"`
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// Filter narrows notification and stats queries. Zero values match all.
type Filter struct {
	ApplicationID string
	Channel       string
	Provider      string
	From          *time.Time
	To            *time.Time
}

func (f Filter) query() map[string]string {
	q := make(map[string]string)
	if v := strings.TrimSpace(f.ApplicationID); v != "" {
		q["applicationId"] = v
	}
	if v := strings.TrimSpace(f.Channel); v != "" {
		q["channel"] = v
	}
	if v := strings.TrimSpace(f.Provider); v != "" {
		q["provider"] = v
	}
	if f.From != nil {
		q["from"] = f.From.UTC().Format(time.RFC3339)
	}
	if f.To != nil {
		q["to"] = f.To.UTC().Format(time.RFC3339)
	}
	return q
}

type nameRequest struct {
	Name string `json:"name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type listApplicationsResponse struct {
	Applications []Application `json:"applications"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login exchanges admin credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := c.do(ctx, http.MethodPost, "/admin/auth/login", nil, loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

// CreateApplication is not idempotent and is never retried.
func (c *Client) CreateApplication(ctx context.Context, name string) (*Application, error) {
	var out Application
	if err := c.do(ctx, http.MethodPost, "/admin/create-application", nil, nameRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	var out listApplicationsResponse
	if err := c.doRead(ctx, "/admin/applications", nil, &out); err != nil {
		return nil, err
	}
	if out.Applications == nil {
		out.Applications = []Application{}
	}
	return out.Applications, nil
}

func (c *Client) DeleteApplication(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/admin/delete-application", nil, nameRequest{Name: name}, nil)
}

func (c *Client) RegenerateToken(ctx context.Context, name string) (*Credentials, error) {
	var out Credentials
	if err := c.do(ctx, http.MethodPut, "/admin/regenerate-token", nil, nameRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchNotifications walks every page of the filtered log and validates the
// collected records before returning them. Pages are offset based over a
// newest-first listing, so rows inserted during the walk can repeat a record
// on a later page; repeats are dropped by ID.
func (c *Client) FetchNotifications(ctx context.Context, filter Filter) ([]domain.NotificationRecord, error) {
	records := make([]domain.NotificationRecord, 0)
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		query := filter.query()
		query["page"] = strconv.Itoa(page)
		query["pageSize"] = strconv.Itoa(fetchPageSize)

		var out notificationPage
		if err := c.doRead(ctx, "/admin/notifications", query, &out); err != nil {
			return nil, err
		}

		for i := range out.Data {
			if _, dup := seen[out.Data[i].ID]; dup {
				continue
			}
			seen[out.Data[i].ID] = struct{}{}
			records = append(records, out.Data[i].toDomain())
		}

		if len(out.Data) == 0 || int64(len(records)) >= out.Meta.Total {
			break
		}
	}

	if err := domain.ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) Dashboard(ctx context.Context, filter Filter) (*stats.Dashboard, error) {
	var out stats.Dashboard
	if err := c.doRead(ctx, "/admin/stats", filter.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// doRead performs a GET, retrying transient failures with exponential
// backoff.
func (c *Client) doRead(ctx context.Context, path string, query map[string]string, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	backoff := c.backoffBase
	for attempt := 0; ; attempt++ {
		err := c.do(ctx, http.MethodGet, path, query, nil, out)
		if err == nil {
			return nil
		}
		if attempt >= c.maxRetries || !IsTransient(err) {
			return err
		}

		c.logger.Warn("admin api read failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if sleepErr := c.sleep(ctx, backoff); sleepErr != nil {
			return errors.Join(err, sleepErr)
		}

		backoff *= 2
		if backoff > c.backoffMax {
			backoff = c.backoffMax
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("admin client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var apiErr errorResponse
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetError(&apiErr)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	response, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		return transportError(err)
	}
	if response == nil {
		return &APIError{Message: "admin api returned empty response", Transient: true}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	message := strings.TrimSpace(apiErr.Error)
	if message == "" {
		message = strings.TrimSpace(response.String())
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return statusError(statusCode, message)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
