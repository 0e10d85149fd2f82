// Package main runs the Clash Royale deck proxy: a REST API that pairs a
// player's card collection with LLM-generated deck suggestions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/deftgray/clashproxy/internal/api"
	"github.com/deftgray/clashproxy/internal/config"
	"github.com/deftgray/clashproxy/internal/deck"
	"github.com/deftgray/clashproxy/internal/llm"
	"github.com/deftgray/clashproxy/internal/logging"
	"github.com/deftgray/clashproxy/internal/metrics"
	"github.com/deftgray/clashproxy/internal/royale"
)

var (
	port       = flag.Int("port", 0, "API server port (overrides config)")
	configFile = flag.String("config", "", "Config path (default: ~/.clashproxy/config.toml)")
)

func main() {
	flag.Parse()

	configPath := *configFile
	if configPath == "" {
		var err error
		configPath, err = config.Path()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.Setup(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	logger.Info("starting clashproxy", "config", configPath, "port", cfg.Server.Port)

	if cfg.Royale.Token == "" {
		logger.Warn("no Clash Royale API token configured; set CLASH_API_TOKEN")
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM API key configured; set OPENROUTER_API_KEY")
	}

	// Clash Royale API client
	royaleTimeout, _ := cfg.GetRoyaleTimeout()
	royaleClient := royale.NewClient(royale.ClientOptions{
		BaseURL:   cfg.Royale.BaseURL,
		Token:     cfg.Royale.Token,
		RateLimit: rate.Limit(cfg.Royale.RateLimit),
		Timeout:   royaleTimeout,
	})

	// LLM suggestion generator
	llmTimeout, _ := cfg.GetLLMRequestTimeout()
	llmClient := llm.NewClient(&llm.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		RequestTimeout: llmTimeout,
	})
	generator := llm.NewGenerator(llmClient)

	// Deck service
	attemptTimeout, _ := cfg.GetAttemptTimeout()
	deckMetrics := metrics.NewDeckMetrics()
	service := deck.NewService(royaleClient, generator, &deck.ServiceConfig{
		MaxRetries:     cfg.Deck.MaxRetries,
		AttemptTimeout: attemptTimeout,
	}, deckMetrics, logger)

	// HTTP server
	server := api.NewServer(&api.Config{Port: cfg.Server.Port}, service, llmClient, deckMetrics, logger)
	if err := server.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		os.Exit(1)
	}

	// Hot-reload LLM settings when the config file changes.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	watcher := config.NewWatcher(configPath, logger, func(updated *config.Config) {
		timeout, err := updated.GetLLMRequestTimeout()
		if err != nil {
			return
		}
		llmClient.UpdateConfig(&llm.Config{
			BaseURL:        updated.LLM.BaseURL,
			APIKey:         updated.LLM.APIKey,
			Model:          updated.LLM.Model,
			Temperature:    updated.LLM.Temperature,
			MaxTokens:      updated.LLM.MaxTokens,
			RequestTimeout: timeout,
		})
		logger.Info("LLM settings updated", "model", updated.LLM.Model)
	})
	go func() {
		if err := watcher.Start(watchCtx); err != nil && err != context.Canceled {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	fmt.Printf("clashproxy running at http://localhost:%d\n", server.Port())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}

	logger.Info("stopped")
}
