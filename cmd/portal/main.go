// cmd/portal/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"housing-portal/internal/account"
	"housing-portal/internal/api"
	"housing-portal/internal/auth"
	"housing-portal/internal/common/config"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/contact"
	"housing-portal/internal/dashboard"
	"housing-portal/internal/session"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting portal client...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// --- Wire the client stack ---
	store := session.NewStore(cfg.Session.File, log)

	client := api.NewClient(api.Options{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  config.GetDuration(cfg.API.Timeout),
		CacheTTL: config.GetDuration(cfg.Cache.TTL),
		Tokens:   store,
		Logger:   log,
	})

	controller := auth.NewController(client, store, log)

	monitor := session.NewIdleMonitor(
		config.GetDuration(cfg.Session.IdleTimeout),
		config.GetDuration(cfg.Session.WarningCountdown),
		session.IdleHooks{
			OnWarn: func(remaining time.Duration) {
				fmt.Printf("\nYou have been inactive. You will be signed out in %s unless you continue.\n", remaining)
			},
			OnStay: func() {
				ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.API.Timeout))
				defer cancel()
				if err := controller.StayActive(ctx); err != nil {
					log.WithError(err).Warn("proactive token refresh failed", nil)
				}
			},
			OnTimeout: func() {
				controller.ForceLogout()
				fmt.Println("\nYou were signed out after a period of inactivity.")
			},
		},
		log,
	)

	controller.OnForcedExit(func() {
		monitor.Stop()
	})

	app := &portalApp{
		cfg:        cfg,
		logger:     log,
		client:     client,
		controller: controller,
		monitor:    monitor,
		accounts:   account.NewService(client, log),
		contacts:   contact.NewService(client, log),
		tenantOps:  dashboard.NewService(client, log),
		in:         bufio.NewScanner(os.Stdin),
	}

	// --- Health & Metrics Server ---
	debugAddr := cfg.API.DebugAddr
	if debugAddr != "" {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("addr", debugAddr))
			if err := http.ListenAndServe(debugAddr, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Restore a previous session, if any ---
	bootCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.API.Timeout))
	if err := controller.Bootstrap(bootCtx); err != nil {
		log.WithError(err).Warn("bootstrap failed", nil)
	}
	cancel()

	if controller.State() == auth.StateLoggedIn {
		monitor.Start()
		if user, ok := controller.CurrentUser(); ok {
			fmt.Printf("Welcome back, %s.\n", user.FirstName)
		}
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		app.run()
		close(done)
	}()

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received")
	case <-done:
	}

	monitor.Stop()
	zapLog.Info("Portal client stopped gracefully")
}

// readLine prompts and returns one trimmed input line. Every read counts as
// activity for the idle monitor.
func (a *portalApp) readLine(prompt string) string {
	fmt.Print(prompt)
	if !a.in.Scan() {
		return ""
	}
	a.monitor.Activity()
	return strings.TrimSpace(a.in.Text())
}
