// Package main runs the cryptoboard gateway: the HTTP backend that serves
// the dashboard's auth, preference, vote, and aggregated feed endpoints.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cryptoboard/gateway/internal/app"
)

func main() {
	port := flag.String("port", "", "listen port (overrides GATEWAY_PORT)")
	dsn := flag.String("dsn", "", "database DSN (overrides DATABASE_DSN)")
	flag.Parse()

	// Flags win over the environment so local runs can override a sourced
	// config file.
	if *port != "" {
		os.Setenv("GATEWAY_PORT", *port)
	}
	if *dsn != "" {
		os.Setenv("DATABASE_DSN", *dsn)
	}

	application, err := app.New()
	if err != nil {
		log.Fatalf("failed to start gateway: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}

	if err := application.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
