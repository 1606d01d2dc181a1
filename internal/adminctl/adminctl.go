// Package adminctl implements the command line front end of the admin API.
package adminctl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kursadbilgin/dispatch-console/internal/adminclient"
	"go.uber.org/zap"
)

const defaultBaseURL = "http://localhost:8080"

var ErrUsage = errors.New("usage: adminctl [flags] login | apps list|create NAME|delete NAME|regenerate NAME | stats | notifications")

type Config struct {
	BaseURL     string
	Token       string
	Username    string
	Password    string
	Application string
	Channel     string
	Provider    string
	From        string
	To          string
	Retries     int
	Args        []string
}

// ParseConfig parses flags into a Config. Positional arguments are kept in
// Args.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{BaseURL: defaultBaseURL, Retries: 3}
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "admin API base url")
	fs.StringVar(&cfg.Token, "token", "", "admin token")
	fs.StringVar(&cfg.Username, "username", "", "admin username for login")
	fs.StringVar(&cfg.Password, "password", "", "admin password for login")
	fs.StringVar(&cfg.Application, "application", "", "filter by application id")
	fs.StringVar(&cfg.Channel, "channel", "", "filter by channel")
	fs.StringVar(&cfg.Provider, "provider", "", "filter by provider")
	fs.StringVar(&cfg.From, "from", "", "lower bound on createdAt (RFC3339)")
	fs.StringVar(&cfg.To, "to", "", "upper bound on createdAt (RFC3339)")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "retries for read commands")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// Run executes the command in cfg.Args and writes its JSON result to out.
func Run(ctx context.Context, cfg Config, out io.Writer, logger *zap.Logger) error {
	if out == nil {
		return errors.New("output is required")
	}
	if len(cfg.Args) == 0 {
		return ErrUsage
	}

	client, err := adminclient.New(cfg.BaseURL,
		adminclient.WithToken(cfg.Token),
		adminclient.WithRetry(cfg.Retries, 0, 0),
		adminclient.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	result, err := dispatch(ctx, cfg, client)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func dispatch(ctx context.Context, cfg Config, client *adminclient.Client) (any, error) {
	command, rest := cfg.Args[0], cfg.Args[1:]

	switch command {
	case "login":
		if strings.TrimSpace(cfg.Username) == "" || cfg.Password == "" {
			return nil, errors.New("login requires -username and -password")
		}
		token, err := client.Login(ctx, cfg.Username, cfg.Password)
		if err != nil {
			return nil, err
		}
		return map[string]string{"token": token}, nil
	case "apps":
		return dispatchApps(ctx, rest, client)
	case "stats":
		filter, err := cfg.filter()
		if err != nil {
			return nil, err
		}
		return client.Dashboard(ctx, filter)
	case "notifications":
		filter, err := cfg.filter()
		if err != nil {
			return nil, err
		}
		return client.FetchNotifications(ctx, filter)
	default:
		return nil, fmt.Errorf("unknown command %q: %w", command, ErrUsage)
	}
}

func dispatchApps(ctx context.Context, args []string, client *adminclient.Client) (any, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}
	if args[0] == "list" {
		return client.ListApplications(ctx)
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("apps %s requires NAME: %w", args[0], ErrUsage)
	}

	name := args[1]
	switch args[0] {
	case "create":
		return client.CreateApplication(ctx, name)
	case "delete":
		if err := client.DeleteApplication(ctx, name); err != nil {
			return nil, err
		}
		return map[string]string{"name": name, "message": "application deleted"}, nil
	case "regenerate":
		return client.RegenerateToken(ctx, name)
	default:
		return nil, fmt.Errorf("unknown apps command %q: %w", args[0], ErrUsage)
	}
}

func (c Config) filter() (adminclient.Filter, error) {
	filter := adminclient.Filter{
		ApplicationID: c.Application,
		Channel:       c.Channel,
		Provider:      c.Provider,
	}

	var err error
	if filter.From, err = parseTimeFlag("from", c.From); err != nil {
		return adminclient.Filter{}, err
	}
	if filter.To, err = parseTimeFlag("to", c.To); err != nil {
		return adminclient.Filter{}, err
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return adminclient.Filter{}, errors.New("-from must not be after -to")
	}
	return filter, nil
}

func parseTimeFlag(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("-%s must be RFC3339: %w", name, err)
	}
	return &t, nil
}
