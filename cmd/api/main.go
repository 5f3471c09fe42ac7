package main

import (
	"context"
	"fmt"
	"log"

	"rectangle-service/cmd/api/app"
	"rectangle-service/cmd/api/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}

func run() error {
	a, err := app.New()
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	return a.Run(ctx)
}
