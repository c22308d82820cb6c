package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/selfserveid/portal/internal/buildinfo"
	"github.com/selfserveid/portal/internal/cli"
	"github.com/selfserveid/portal/internal/config"
	"github.com/selfserveid/portal/internal/logging"
)

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, logLevel(cfg.LogLevel))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
