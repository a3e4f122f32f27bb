package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/weather-lookup/internal/client"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/coordinator"
	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/log"
	"github.com/i474232898/weather-lookup/internal/tracing"
	"github.com/i474232898/weather-lookup/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Log to a file; stdout belongs to the terminal UI.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	log.Setup("weather-cli", out, zapcore.DebugLevel)
	defer log.Sync()

	shutdownTracing, err := tracing.Setup("weather-cli", cfg.ZipkinEndpoint)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Errorf("error flushing traces: %v", err)
		}
	}()

	locator, err := geo.FromOptions(geo.Options{
		Mode:           cfg.LocationMode,
		Static:         cfg.Location,
		GeocoderAPIKey: cfg.GeocoderAPIKey,
		City:           cfg.LocationCity,
		Country:        cfg.LocationCountry,
	})
	if err != nil {
		return err
	}

	opts := []coordinator.Option{
		coordinator.WithDefaultCity(cfg.DefaultCity),
		coordinator.WithMessages(coordinator.MessagesFor(cfg.Lang)),
	}
	if locator != nil {
		opts = append(opts, coordinator.WithLocator(locator))
	}
	coord := coordinator.New(client.New(cfg.APIBaseURL, cfg.ClientTimeout), opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infof("starting weather-cli against %s", cfg.APIBaseURL)
	if _, err := tea.NewProgram(tui.New(ctx, coord)).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
