package main

import (
	"log/slog"
	"os"

	"minance/cmd/minance/cmd"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
