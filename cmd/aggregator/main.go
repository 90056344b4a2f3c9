package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/catalog/domain"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/catalog/handler"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/catalog/repository"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/catalog/service"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/config"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/metadata"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/provider"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/database"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/events"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/logger"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New()
	log.Info("Starting aggregator service",
		interfaces.String("environment", cfg.Service.Environment),
		interfaces.Int("port", cfg.Service.Port),
		interfaces.Duration("title_ttl", cfg.Cache.TitleTTL))

	db, err := database.NewGormDB(cfg.Database.ToDatabaseConfig())
	if err != nil {
		log.Fatal("Failed to connect to database", interfaces.Error(err))
	}
	if err := database.MigrateDatabase(db, &models.Title{}); err != nil {
		log.Fatal("Failed to migrate database", interfaces.Error(err))
	}

	cache := utils.NewMemoryCache(cfg.Cache.TitleTTL, cfg.Cache.CleanupInterval)

	eventBus := events.NewLocalEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", interfaces.Error(err))
	}
	if err := eventBus.Subscribe(domain.EventTitleResolved, handler.NewResolutionAuditHandler(log)); err != nil {
		log.Fatal("Failed to subscribe resolution audit handler", interfaces.Error(err))
	}

	titleRepo := repository.NewGormTitleRepository(db, cache, cfg.Cache.TitleTTL, log)

	metadataClient := metadata.NewClient(cfg.Metadata, log)
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 10*time.Second)
	if err := metadataClient.WarmGenres(warmCtx); err != nil {
		log.Warn("Genre warm-up failed, names resolve lazily", interfaces.Error(err))
	}
	cancelWarm()

	registry := provider.NewRegistry(log)
	registry.Register(provider.NewKKPhimProvider(cfg.Providers.KKPhim, log))
	registry.Register(provider.NewNguonCProvider(cfg.Providers.NguonC, log))

	resolver := service.NewResolverService(titleRepo, registry, metadataClient, eventBus, log, cfg.Providers.Primary)

	router := mux.NewRouter()
	movieHandler := handler.NewMovieHandler(resolver, log)
	movieHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Service.ListenAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", interfaces.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", interfaces.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down aggregator service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", interfaces.Error(err))
	}
	if err := eventBus.Stop(); err != nil {
		log.Error("Event bus shutdown failed", interfaces.Error(err))
	}

	log.Info("Aggregator service stopped")
}
