package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/NGC6543/blogicum"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		slog.ErrorContext(ctx, "failed to load .env file", "error", err)

		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: blogicum.GetLogLevelFromEnv(),
	}))
	slog.SetDefault(logger)

	app, err := blogicum.NewApp(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create app", "error", err)

		os.Exit(1)
	}

	err = app.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to run app", "error", err)

		os.Exit(1)
	}
}
