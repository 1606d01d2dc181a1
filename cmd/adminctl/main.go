package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/kursadbilgin/dispatch-console/internal/adminctl"
	"github.com/kursadbilgin/dispatch-console/internal/observability"
)

func main() {
	cfg, err := adminctl.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		exitf("parse flags: %v", err)
	}

	logger, err := observability.NewLogger("warn", "adminctl")
	if err != nil {
		exitf("init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := adminctl.Run(ctx, cfg, os.Stdout, logger); err != nil {
		if errors.Is(err, adminctl.ErrUsage) {
			flag.Usage()
		}
		exitf("%v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
