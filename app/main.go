package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"yad2watch/app/api"
	"yad2watch/app/cfg"
	"yad2watch/app/engine"
	"yad2watch/app/listing"
	"yad2watch/app/search"
	"yad2watch/app/store"
	"yad2watch/app/tasks"
	"yad2watch/app/telegram"
	"yad2watch/app/yad2"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting yad2watch", "version", cfg.GetVersion())

	configCache := search.NewConfigCache(c.SearchesDir, c.CheckInterval)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load search profiles", "error", err)
		os.Exit(1)
	}
	if configCache.GetConfigCount() == 0 {
		slog.Error("No search profiles found", "dir", c.SearchesDir)
		os.Exit(1)
	}
	slog.Info("Search profiles loaded", "count", configCache.GetConfigCount())

	seen := store.NewSeenStore(c.SeenFile)
	if err := seen.Load(); err != nil {
		slog.Error("Failed to load seen store", "error", err)
		os.Exit(1)
	}

	phones := store.NewPhoneCache(c.PhoneCacheFile)
	if err := phones.Load(); err != nil {
		slog.Error("Failed to load phone cache", "error", err)
		os.Exit(1)
	}

	firstRun := seen.Len() == 0
	if firstRun {
		slog.Info("First run detected, building baseline without notifications")
	} else {
		slog.Info("Seen store loaded", "listings", seen.Len(), "phones", phones.Len())
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}
	client := yad2.NewClient(httpClient)
	notifier := telegram.NewNotifier(c.TelegramBotToken, c.TelegramChatID)
	resolver := engine.NewResolver(client, phones)
	matcher := listing.NewMatcher(listing.Policy(c.MatchPolicy))
	eng := engine.New(client, resolver, matcher, seen, notifier)

	scheduler := tasks.NewScheduler(configCache, eng, firstRun)

	if c.RunOnce {
		if err := scheduler.RunOnce(context.Background()); err != nil {
			slog.Error("Run-once pass failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Run-once pass complete")
		return
	}

	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, seen, phones, eng, scheduler)
	server := api.NewServer(apiHandler, c.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
