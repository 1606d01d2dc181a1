package adminctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("adminctl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"apps", "list"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("expected default url, got %q", cfg.BaseURL)
	}
	if cfg.Retries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.Retries)
	}
	if strings.Join(cfg.Args, " ") != "apps list" {
		t.Fatalf("expected positional args, got %v", cfg.Args)
	}
}

func TestParseConfigOverride(t *testing.T) {
	fs := flag.NewFlagSet("adminctl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-url", "http://console:9000", "-token", "tok", "-channel", "sms", "stats"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.BaseURL != "http://console:9000" || cfg.Token != "tok" || cfg.Channel != "sms" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "stats" {
		t.Fatalf("expected stats command, got %v", cfg.Args)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	err := Run(context.Background(), Config{BaseURL: defaultBaseURL}, &bytes.Buffer{}, zap.NewNop())
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRunNilOutput(t *testing.T) {
	if err := Run(context.Background(), Config{Args: []string{"stats"}}, nil, nil); err == nil {
		t.Fatal("expected error for nil output")
	}
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	for _, args := range [][]string{{"bogus"}, {"apps"}, {"apps", "rename", "x"}, {"apps", "create"}} {
		err := Run(context.Background(), Config{BaseURL: defaultBaseURL, Args: args}, &bytes.Buffer{}, nil)
		if !errors.Is(err, ErrUsage) {
			t.Fatalf("args %v: expected usage error, got %v", args, err)
		}
	}
}

func TestRunRejectsBadTimeFlags(t *testing.T) {
	cfg := Config{BaseURL: defaultBaseURL, From: "yesterday", Args: []string{"stats"}}
	if err := Run(context.Background(), cfg, &bytes.Buffer{}, nil); err == nil {
		t.Fatal("expected error for invalid -from")
	}

	cfg = Config{
		BaseURL: defaultBaseURL,
		From:    "2024-03-02T00:00:00Z",
		To:      "2024-03-01T00:00:00Z",
		Args:    []string{"notifications"},
	}
	if err := Run(context.Background(), cfg, &bytes.Buffer{}, nil); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestRunLoginRequiresCredentials(t *testing.T) {
	err := Run(context.Background(), Config{BaseURL: defaultBaseURL, Args: []string{"login"}}, &bytes.Buffer{}, nil)
	if err == nil || !strings.Contains(err.Error(), "-username") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestRunAppsCreatePrintsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/create-application" || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"billing","token":"t1","secret":"s1","createdAt":"2024-03-01T10:00:00Z"}`))
	}))
	defer server.Close()

	buf := &bytes.Buffer{}
	cfg := Config{BaseURL: server.URL, Token: "tok", Args: []string{"apps", "create", "billing"}}
	if err := Run(context.Background(), cfg, buf, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got["name"] != "billing" || got["token"] != "t1" || got["secret"] != "s1" {
		t.Fatalf("unexpected output: %v", got)
	}
}

func TestRunStatsForwardsFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/admin/stats" || q.Get("channel") != "sms" || q.Get("applicationId") != "app-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"overview":{"total":0,"deliveryRate":"0","failureRate":"0","avgAttempts":"0"},"statusDistribution":[],"channels":[],"providers":[],"retries":[]}`))
	}))
	defer server.Close()

	buf := &bytes.Buffer{}
	cfg := Config{BaseURL: server.URL, Channel: "sms", Application: "app-1", Args: []string{"stats"}}
	if err := Run(context.Background(), cfg, buf, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), `"deliveryRate": "0"`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
