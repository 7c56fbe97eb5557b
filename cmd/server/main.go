package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/logs"

	"github.com/omochice/frame-chat/internal/config"
	"github.com/omochice/frame-chat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var address string
	if len(os.Args) > 1 {
		address = os.Args[1]
	}

	cfg, err := config.LoadServer(address)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	srv := server.New(server.Config{
		Address:      cfg.Address,
		WSAddress:    cfg.WSAddress,
		PoolSize:     cfg.PoolSize,
		WriteTimeout: cfg.WriteTimeout,
	}, log)
	if err := srv.Listen(); err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve()
	}()

	select {
	case err := <-errChan:
		srv.Stop()
		return err
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
		srv.Stop()
		return <-errChan
	}
}
