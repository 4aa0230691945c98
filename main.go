// Command drivewise answers a single driving question from the command line and
// prints the answer as JSON. It uses the same configuration as the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/RichardoC/drivewise/internal/app"
	"github.com/RichardoC/drivewise/internal/config"
	"github.com/RichardoC/drivewise/internal/llm"
	"github.com/RichardoC/drivewise/internal/metrics"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", config.PathFromEnv(), "path to a yaml config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] <question>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if question == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	// stdout carries the answer, so keep logs quiet unless asked otherwise
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		logger.Fatal("failed to initialize LLM provider", zap.Error(err))
	}
	answer := llm.NewService(provider, cfg.LLM, logger, metrics.New()).Generate(context.Background(), question)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(answer); err != nil {
		logger.Fatal("failed to print answer", zap.Error(err))
	}
}
