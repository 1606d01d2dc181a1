package handler

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
	"github.com/kursadbilgin/dispatch-console/internal/service"
	"github.com/kursadbilgin/dispatch-console/internal/stats"
	"github.com/kursadbilgin/dispatch-console/internal/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const validToken = "valid-admin-token"

func TestAdminRoutesRequireToken(t *testing.T) {
	t.Parallel()

	app := newAdminTestApp(t, testServices{})

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no token"},
		{name: "invalid bearer", headers: map[string]string{fiber.HeaderAuthorization: "Bearer nope"}},
		{name: "invalid cookie", headers: map[string]string{fiber.HeaderCookie: AdminCookieName + "=nope"}},
		{name: "non bearer scheme", headers: map[string]string{fiber.HeaderAuthorization: "Basic " + validToken}},
	}

	for _, tt := range tests {
		resp, body := performRequestWithHeaders(t, app, http.MethodGet, "/admin/applications", "", tt.headers)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401, body=%s", tt.name, resp.StatusCode, string(body))
		}
		if msg := decodeError(t, body); !strings.Contains(msg, "unauthorized") {
			t.Fatalf("%s: error = %q, want unauthorized", tt.name, msg)
		}
	}
}

func TestAdminRoutesAcceptCookieAndBearer(t *testing.T) {
	t.Parallel()

	app := newAdminTestApp(t, testServices{})

	for _, headers := range []map[string]string{
		{fiber.HeaderAuthorization: "Bearer " + validToken},
		{fiber.HeaderAuthorization: "bearer " + validToken},
		{fiber.HeaderCookie: AdminCookieName + "=" + validToken},
		{
			fiber.HeaderCookie:        AdminCookieName + "=expired-token",
			fiber.HeaderAuthorization: "Bearer " + validToken,
		},
	} {
		resp, body := performRequestWithHeaders(t, app, http.MethodGet, "/admin/applications", "", headers)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("headers %v: status = %d, want 200, body=%s", headers, resp.StatusCode, string(body))
		}
	}
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
		wantCookie bool
	}{
		{
			name:       "success sets cookie",
			body:       `{"username":"admin","password":"pw"}`,
			wantStatus: fiber.StatusOK,
			wantCookie: true,
		},
		{
			name:       "bad credentials",
			body:       `{"username":"admin","password":"wrong"}`,
			loginErr:   fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "rate limited",
			body:       `{"username":"admin","password":"pw"}`,
			loginErr:   fmt.Errorf("%w: too many login attempts", domain.ErrRateLimited),
			wantStatus: fiber.StatusTooManyRequests,
		},
		{
			name:       "missing password",
			body:       `{"username":"admin"}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			auth := &stubAuthService{
				loginFn: func(ctx context.Context, clientKey, username, password string) (*service.Session, error) {
					if tt.loginErr != nil {
						return nil, tt.loginErr
					}
					if clientKey == "" {
						t.Fatal("client key should be the remote ip")
					}
					return &service.Session{Token: "signed", Username: username, ExpiresAt: expiresAt}, nil
				},
			}
			app := newAdminTestApp(t, testServices{auth: auth})

			resp, body := performRequest(t, app, http.MethodPost, "/admin/auth/login", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", resp.StatusCode, tt.wantStatus, string(body))
			}

			cookie := findCookie(resp, AdminCookieName)
			if !tt.wantCookie {
				if cookie != nil {
					t.Fatal("cookie should not be set")
				}
				return
			}
			if cookie == nil {
				t.Fatal("expected admin_token cookie")
			}
			if cookie.Value != "signed" || !cookie.HttpOnly {
				t.Fatalf("cookie = %+v, want signed HttpOnly", cookie)
			}

			var got loginResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if got.Token != "signed" || !got.ExpiresAt.Equal(expiresAt) {
				t.Fatalf("response = %+v", got)
			}
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()

	app := newAdminTestApp(t, testServices{})

	resp, body := performRequest(t, app, http.MethodPost, "/admin/logout", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	cookie := findCookie(resp, AdminCookieName)
	if cookie == nil {
		t.Fatal("expected admin_token cookie to be cleared")
	}
	if cookie.Value != "" {
		t.Fatalf("cookie value = %q, want empty", cookie.Value)
	}
}

func TestCreateApplicationEndpoint(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
	}{
		{name: "created", body: `{"name":"billing"}`, wantStatus: fiber.StatusCreated},
		{name: "conflict", body: `{"name":"billing"}`, createErr: fmt.Errorf("%w: exists", domain.ErrConflict), wantStatus: fiber.StatusConflict},
		{name: "validation", body: `{"name":""}`, createErr: fmt.Errorf("%w: application name is required", domain.ErrValidation), wantStatus: fiber.StatusBadRequest},
		{name: "malformed body", body: `{`, wantStatus: fiber.StatusBadRequest},
		{name: "internal", body: `{"name":"billing"}`, createErr: errors.New("db down"), wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apps := &stubApplicationService{
				createFn: func(ctx context.Context, name string) (*domain.Application, error) {
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					return &domain.Application{
						Name:      name,
						APIToken:  strings.Repeat("a", 32),
						APISecret: strings.Repeat("b", 64),
						CreatedAt: createdAt,
					}, nil
				},
			}
			app := newAdminTestApp(t, testServices{apps: apps})

			resp, body := performAuthedRequest(t, app, http.MethodPost, "/admin/create-application", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", resp.StatusCode, tt.wantStatus, string(body))
			}
			if tt.wantStatus != fiber.StatusCreated {
				if msg := decodeError(t, body); msg == "" {
					t.Fatal("expected error message")
				}
				return
			}

			var got applicationResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if got.Name != "billing" || len(got.Token) != 32 || len(got.Secret) != 64 || !got.CreatedAt.Equal(createdAt) {
				t.Fatalf("response = %+v", got)
			}
		})
	}
}

func TestListApplicationsEndpoint(t *testing.T) {
	t.Parallel()

	apps := &stubApplicationService{
		listFn: func(ctx context.Context) ([]domain.Application, error) {
			return []domain.Application{
				{Name: "a", APIToken: "t1", APISecret: "s1"},
				{Name: "b", APIToken: "t2", APISecret: "s2"},
			}, nil
		},
	}
	app := newAdminTestApp(t, testServices{apps: apps})

	resp, body := performAuthedRequest(t, app, http.MethodGet, "/admin/applications", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var got listApplicationsResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got.Applications) != 2 || got.Applications[1].Token != "t2" {
		t.Fatalf("response = %+v", got)
	}
}

func TestDeleteApplicationEndpoint(t *testing.T) {
	t.Parallel()

	apps := &stubApplicationService{
		deleteFn: func(ctx context.Context, name string) error {
			if name == "ghost" {
				return fmt.Errorf("%w: application %q", domain.ErrNotFound, name)
			}
			return nil
		},
	}
	app := newAdminTestApp(t, testServices{apps: apps})

	resp, body := performAuthedRequest(t, app, http.MethodPut, "/admin/delete-application", `{"name":" billing "}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	var got deleteApplicationResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Name != "billing" || got.Message == "" {
		t.Fatalf("response = %+v", got)
	}

	resp, body = performAuthedRequest(t, app, http.MethodPut, "/admin/delete-application", `{"name":"ghost"}`)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404, body=%s", resp.StatusCode, string(body))
	}
}

func TestRegenerateTokenEndpoint(t *testing.T) {
	t.Parallel()

	apps := &stubApplicationService{
		regenerateFn: func(ctx context.Context, name string) (*domain.Application, error) {
			return &domain.Application{Name: name, APIToken: "new-token", APISecret: "new-secret"}, nil
		},
	}
	app := newAdminTestApp(t, testServices{apps: apps})

	resp, body := performAuthedRequest(t, app, http.MethodPut, "/admin/regenerate-token", `{"name":"billing"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var got credentialsResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got != (credentialsResponse{Name: "billing", Token: "new-token", Secret: "new-secret"}) {
		t.Fatalf("response = %+v", got)
	}
}

func TestListNotificationsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("passes filters and pagination", func(t *testing.T) {
		t.Parallel()

		var got repository.ListParams
		analytics := &stubAnalyticsService{
			fetchFn: func(ctx context.Context, params repository.ListParams) (service.NotificationPage, error) {
				got = params
				return service.NotificationPage{
					Records:  []domain.NotificationRecord{{ID: "n1", Status: domain.StatusDelivered, Channel: "email", Attempts: 1}},
					Page:     params.Page,
					PageSize: params.PageSize,
					Total:    11,
				}, nil
			},
		}
		app := newAdminTestApp(t, testServices{analytics: analytics})

		path := "/admin/notifications?page=2&pageSize=10&channel=email&provider=gmail&applicationId=app-1&from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z"
		resp, body := performAuthedRequest(t, app, http.MethodGet, path, "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
		}

		if got.Page != 2 || got.PageSize != 10 {
			t.Fatalf("params = %+v", got)
		}
		if got.Channel == nil || *got.Channel != "email" || got.Provider == nil || *got.Provider != "gmail" {
			t.Fatalf("filter = %+v", got.RecordFilter)
		}
		if got.ApplicationID == nil || *got.ApplicationID != "app-1" {
			t.Fatalf("applicationId = %v", got.ApplicationID)
		}
		if got.From == nil || got.To == nil || !got.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("range = %v..%v", got.From, got.To)
		}

		var resBody listNotificationsResponse
		if err := json.Unmarshal(body, &resBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if resBody.Meta != (listMeta{Page: 2, PageSize: 10, Total: 11}) {
			t.Fatalf("meta = %+v", resBody.Meta)
		}
		if len(resBody.Data) != 1 || resBody.Data[0].Status != "delivered" {
			t.Fatalf("data = %+v", resBody.Data)
		}
	})

	t.Run("rejects invalid query", func(t *testing.T) {
		t.Parallel()

		app := newAdminTestApp(t, testServices{})
		for _, path := range []string{
			"/admin/notifications?page=0",
			"/admin/notifications?pageSize=101",
			"/admin/notifications?from=yesterday",
			"/admin/notifications?from=2026-02-01T00:00:00Z&to=2026-01-01T00:00:00Z",
		} {
			resp, body := performAuthedRequest(t, app, http.MethodGet, path, "")
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("%s: status = %d, want 400, body=%s", path, resp.StatusCode, string(body))
			}
		}
	})
}

func TestStatsEndpoints(t *testing.T) {
	t.Parallel()

	records := []domain.NotificationRecord{
		{ID: "n1", Status: domain.StatusDelivered, Channel: "email", Provider: "gmail", Attempts: 1},
		{ID: "n2", Status: domain.StatusFailed, Channel: "email", Provider: "gmail", Attempts: 3},
		{ID: "n3", Status: domain.StatusDelivered, Channel: "sms", Provider: "twilio", Attempts: 1},
	}

	var lastFilter repository.RecordFilter
	analytics := &stubAnalyticsService{records: records, onFilter: func(f repository.RecordFilter) { lastFilter = f }}
	app := newAdminTestApp(t, testServices{analytics: analytics})

	t.Run("dashboard", func(t *testing.T) {
		resp, body := performAuthedRequest(t, app, http.MethodGet, "/admin/stats", "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
		}
		var got stats.Dashboard
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got.Overview.DeliveryRate != "66.7" || len(got.Providers) != 2 {
			t.Fatalf("dashboard = %+v", got)
		}
	})

	t.Run("overview with filter", func(t *testing.T) {
		resp, body := performAuthedRequest(t, app, http.MethodGet, "/admin/stats/overview?channel=email", "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
		}
		if lastFilter.Channel == nil || *lastFilter.Channel != "email" {
			t.Fatalf("filter = %+v, want channel email", lastFilter)
		}
		var got stats.Overview
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got.Total != 3 || got.AvgAttempts != "1.7" {
			t.Fatalf("overview = %+v", got)
		}
	})

	t.Run("single views", func(t *testing.T) {
		for _, path := range []string{"/admin/stats/status", "/admin/stats/channels", "/admin/stats/providers", "/admin/stats/retries"} {
			resp, body := performAuthedRequest(t, app, http.MethodGet, path, "")
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("%s: status = %d, want 200, body=%s", path, resp.StatusCode, string(body))
			}
			var items []map[string]any
			if err := json.Unmarshal(body, &items); err != nil {
				t.Fatalf("%s: decode body: %v", path, err)
			}
			if len(items) != 2 {
				t.Fatalf("%s: items = %d, want 2", path, len(items))
			}
		}
	})

	t.Run("inconsistent stored record is a server error", func(t *testing.T) {
		cause := domain.NewValidationError("attempts", "must be >= 0 (record x, got -1)")
		bad := &stubAnalyticsService{err: domain.NewInconsistentDataError("notification log", cause)}
		badApp := newAdminTestApp(t, testServices{analytics: bad})

		for _, path := range []string{"/admin/stats", "/admin/stats/retries", "/admin/notifications"} {
			resp, body := performAuthedRequest(t, badApp, http.MethodGet, path, "")
			if resp.StatusCode != fiber.StatusInternalServerError {
				t.Fatalf("%s: status = %d, want 500, body=%s", path, resp.StatusCode, string(body))
			}
			if !strings.Contains(string(body), "internal server error") {
				t.Fatalf("%s: body = %s, want masked message", path, string(body))
			}
		}
	})
}

func TestCorrelationIDMiddleware(t *testing.T) {
	t.Parallel()

	app := newAdminTestApp(t, testServices{})

	resp, _ := performRequestWithHeaders(t, app, http.MethodGet, "/livez", "", map[string]string{fiber.HeaderXRequestID: "req-42"})
	if got := resp.Header.Get(fiber.HeaderXRequestID); got != "req-42" {
		t.Fatalf("X-Request-ID = %q, want req-42", got)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/livez", "")
	if got := resp.Header.Get(fiber.HeaderXRequestID); got == "" {
		t.Fatal("expected generated X-Request-ID")
	}
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	t.Run("livez returns 200", func(t *testing.T) {
		t.Parallel()

		app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
		RegisterHealthRoutes(app, sql.OpenDB(stubConnector{}), newMiniRedisClient(t))

		resp, body := performRequest(t, app, http.MethodGet, "/livez", "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("readyz returns 200 when dependencies healthy", func(t *testing.T) {
		t.Parallel()

		sqlDB := sql.OpenDB(stubConnector{})
		t.Cleanup(func() { _ = sqlDB.Close() })

		app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
		RegisterHealthRoutes(app, sqlDB, newMiniRedisClient(t))

		resp, body := performRequest(t, app, http.MethodGet, "/readyz", "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("readyz returns 503 when a dependency is down", func(t *testing.T) {
		t.Parallel()

		sqlDB := sql.OpenDB(stubConnector{pingErr: errors.New("postgres down")})
		t.Cleanup(func() { _ = sqlDB.Close() })

		app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
		RegisterHealthRoutes(app, sqlDB, newMiniRedisClient(t))

		resp, body := performRequest(t, app, http.MethodGet, "/readyz", "")
		if resp.StatusCode != fiber.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503, body=%s", resp.StatusCode, string(body))
		}

		var got struct {
			Checks map[string]string `json:"checks"`
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got.Checks["postgres"] != "down" || got.Checks["redis"] != "ok" {
			t.Fatalf("checks = %v", got.Checks)
		}
	})
}

type testServices struct {
	auth      AuthService
	apps      ApplicationService
	analytics AnalyticsService
}

func newAdminTestApp(t *testing.T, svcs testServices) *fiber.App {
	t.Helper()

	if svcs.auth == nil {
		svcs.auth = &stubAuthService{}
	}
	if svcs.apps == nil {
		svcs.apps = &stubApplicationService{}
	}
	if svcs.analytics == nil {
		svcs.analytics = &stubAnalyticsService{}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	app.Use(CorrelationIDMiddleware())
	app.Get("/livez", LivezHandler())

	if err := RegisterAdminRoutes(app, Services{
		Auth:         svcs.auth,
		Applications: svcs.apps,
		Analytics:    svcs.analytics,
	}); err != nil {
		t.Fatalf("RegisterAdminRoutes() error = %v", err)
	}

	return app
}

func performRequest(t *testing.T, app *fiber.App, method string, path string, body string) (*http.Response, []byte) {
	t.Helper()
	return performRequestWithHeaders(t, app, method, path, body, nil)
}

func performAuthedRequest(t *testing.T, app *fiber.App, method string, path string, body string) (*http.Response, []byte) {
	t.Helper()
	return performRequestWithHeaders(t, app, method, path, body, map[string]string{
		fiber.HeaderAuthorization: "Bearer " + validToken,
	})
}

func performRequestWithHeaders(t *testing.T, app *fiber.App, method string, path string, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, respBody
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()

	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return payload["error"]
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type stubAuthService struct {
	loginFn func(ctx context.Context, clientKey, username, password string) (*service.Session, error)
}

func (s *stubAuthService) Login(ctx context.Context, clientKey, username, password string) (*service.Session, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, clientKey, username, password)
	}
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Verify(token string) (*service.AdminClaims, error) {
	if token != validToken {
		return nil, fmt.Errorf("%w: invalid admin token", domain.ErrUnauthorized)
	}
	return &service.AdminClaims{Username: "admin", Admin: true}, nil
}

type stubApplicationService struct {
	createFn     func(ctx context.Context, name string) (*domain.Application, error)
	listFn       func(ctx context.Context) ([]domain.Application, error)
	deleteFn     func(ctx context.Context, name string) error
	regenerateFn func(ctx context.Context, name string) (*domain.Application, error)
}

func (s *stubApplicationService) Create(ctx context.Context, name string) (*domain.Application, error) {
	if s.createFn != nil {
		return s.createFn(ctx, name)
	}
	return nil, errors.New("not implemented")
}

func (s *stubApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubApplicationService) Delete(ctx context.Context, name string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, strings.TrimSpace(name))
	}
	return nil
}

func (s *stubApplicationService) Regenerate(ctx context.Context, name string) (*domain.Application, error) {
	if s.regenerateFn != nil {
		return s.regenerateFn(ctx, name)
	}
	return nil, errors.New("not implemented")
}

// stubAnalyticsService aggregates a fixed record set with the real stats
// package.
type stubAnalyticsService struct {
	records  []domain.NotificationRecord
	err      error
	fetchFn  func(ctx context.Context, params repository.ListParams) (service.NotificationPage, error)
	onFilter func(filter repository.RecordFilter)
}

func (s *stubAnalyticsService) FetchNotifications(ctx context.Context, params repository.ListParams) (service.NotificationPage, error) {
	if s.fetchFn != nil {
		return s.fetchFn(ctx, params)
	}
	return service.NotificationPage{Records: s.records, Page: params.Page, PageSize: params.PageSize}, s.err
}

func (s *stubAnalyticsService) snapshot(filter repository.RecordFilter) ([]domain.NotificationRecord, error) {
	if s.onFilter != nil {
		s.onFilter(filter)
	}
	return s.records, s.err
}

func (s *stubAnalyticsService) Dashboard(ctx context.Context, filter repository.RecordFilter) (stats.Dashboard, error) {
	records, err := s.snapshot(filter)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Compute(records), nil
}

func (s *stubAnalyticsService) Overview(ctx context.Context, filter repository.RecordFilter) (stats.Overview, error) {
	records, err := s.snapshot(filter)
	if err != nil {
		return stats.Overview{}, err
	}
	return stats.ComputeOverview(records), nil
}

func (s *stubAnalyticsService) StatusDistribution(ctx context.Context, filter repository.RecordFilter) ([]stats.StatusShare, error) {
	records, err := s.snapshot(filter)
	if err != nil {
		return nil, err
	}
	return stats.ComputeStatusDistribution(records), nil
}

func (s *stubAnalyticsService) ChannelPerformance(ctx context.Context, filter repository.RecordFilter) ([]stats.GroupMetric, error) {
	records, err := s.snapshot(filter)
	if err != nil {
		return nil, err
	}
	return stats.ComputeChannelPerformance(records), nil
}

func (s *stubAnalyticsService) ProviderComparison(ctx context.Context, filter repository.RecordFilter) ([]stats.ProviderMetric, error) {
	records, err := s.snapshot(filter)
	if err != nil {
		return nil, err
	}
	return stats.ComputeProviderComparison(records), nil
}

func (s *stubAnalyticsService) RetryDistribution(ctx context.Context, filter repository.RecordFilter) ([]stats.RetryBucket, error) {
	records, err := s.snapshot(filter)
	if err != nil {
		return nil, err
	}
	return stats.ComputeRetryDistribution(records), nil
}

type stubConnector struct {
	pingErr error
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return stubConn(c), nil
}

func (c stubConnector) Driver() driver.Driver {
	return stubDriver(c)
}

type stubDriver struct {
	pingErr error
}

func (d stubDriver) Open(string) (driver.Conn, error) {
	return stubConn(d), nil
}

type stubConn struct {
	pingErr error
}

func (c stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c stubConn) Close() error                        { return nil }
func (c stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("not implemented") }
func (c stubConn) Ping(context.Context) error          { return c.pingErr }

func newMiniRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
