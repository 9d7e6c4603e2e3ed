// Package main is rewardsctl, the operator CLI of the rewards engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ecosignal.fr/rewards/internal/app"
	"ecosignal.fr/rewards/internal/cli"
	"ecosignal.fr/rewards/internal/config"
	"ecosignal.fr/rewards/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, openBackend, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func openBackend(ctx context.Context) (*cli.Backend, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// Logs go to stderr and stay quiet unless something goes wrong.
	logging.Setup("warn", cfg.AppEnv)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &cli.Backend{
		Reports:   a.Reports,
		Badges:    a.Badges,
		Levels:    a.Levels,
		Ledger:    a.Ledger,
		History:   a.History,
		Analytics: a.Analytics,
		Auth:      a.Admin,
	}, a.Close, nil
}
