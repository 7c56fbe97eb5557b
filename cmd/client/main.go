package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"

	"github.com/omochice/frame-chat/internal/client"
	"github.com/omochice/frame-chat/internal/config"
)

const dialTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var address string
	if len(os.Args) > 1 {
		address = os.Args[1]
	}

	cfg, err := config.LoadClient(address)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, err := client.Dial(dialCtx, cfg.Address)
	cancel()
	if err != nil {
		return err
	}
	log.Debug("Connected", "address", cfg.Address)

	c := client.New(conn, os.Stdout, os.Stderr, client.Config{
		FilesDir:  cfg.FilesDir,
		ImagesDir: cfg.ImagesDir,
	}, log)
	return c.Run(ctx, os.Stdin)
}
