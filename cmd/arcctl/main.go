package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/cli"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/setup"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/setup/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context) (cli.Service, error) {
		cfg := setup.LoadConfig()
		appLogger := logger.New(cfg.LogLevel)
		deps, err := setup.Wire(ctx, cfg, &appLogger)
		if err != nil {
			return nil, err
		}
		return deps.Pipeline, nil
	}

	if err := cli.NewRootCommand(factory).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
