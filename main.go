package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"drtvrss/api"
	"drtvrss/config"
	"drtvrss/handlers"
	"drtvrss/services/drtv"
	"drtvrss/utils"
)

func main() {
	cfg := config.Load()

	service, err := drtv.NewService(cfg, nil)
	if err != nil {
		log.Fatalf("[main] failed to build catalog service: %v", err)
	}

	feedHandler := handlers.NewFeedHandler(service)

	router := utils.NewRouter()
	router.HandleFunc("/", feedHandler.Index).Methods(http.MethodGet)
	router.HandleFunc("/search", feedHandler.Search).Methods(http.MethodGet)
	router.HandleFunc("/live", feedHandler.Live).Methods(http.MethodGet)
	router.HandleFunc("/program/{prog}.xml", feedHandler.ProgramFeed).Methods(http.MethodGet)
	router.HandleFunc("/{show}.xml", feedHandler.ShowFeed).Methods(http.MethodGet)

	var handler http.Handler = router
	if cfg.RateLimitPerMinute > 0 {
		limiter := api.NewIPRateLimiter(
			rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)),
			cfg.RateLimitPerMinute,
		)
		handler = api.RateLimitHandler(limiter, router)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.PrewarmIDs) > 0 {
		go func() {
			log.Printf("[main] prewarming %d identifiers", len(cfg.PrewarmIDs))
			service.Prewarm(ctx, cfg.PrewarmIDs)
		}()
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[main] shutdown: %v", err)
		}
	}()

	log.Printf("[main] listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[main] server error: %v", err)
	}
}
