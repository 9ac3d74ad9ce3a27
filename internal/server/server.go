package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hexrift/nft-catalog/internal/browse"
	"github.com/hexrift/nft-catalog/internal/cache"
	"github.com/hexrift/nft-catalog/internal/handlers"
	"github.com/hexrift/nft-catalog/internal/metrics"
	"github.com/hexrift/nft-catalog/internal/upstream"
	"github.com/hexrift/nft-catalog/pkg/config"
	"github.com/hexrift/nft-catalog/pkg/logger"
)

type Server struct {
	HTTPServer *http.Server
	Logger     *logger.Logger
	Sessions   *browse.Manager
	Cache      cache.Cacher
}

// New wires the cache, upstream client, session manager and handlers into a
// ready-to-run HTTP server.
func New(cfg *config.Config, log *logger.Logger) *Server {
	mux := chi.NewMux()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cacher cache.Cacher = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("[CACHE] connection failed -> " + err.Error())
		}
		cacher = redisCache
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	clock := browse.RealClock()
	client := upstream.NewClient(cfg.UpstreamBaseURL, cacher, time.Duration(cfg.CacheTTLSeconds)*time.Second, log, m)
	sessions := browse.NewManager(time.Duration(cfg.SessionTTLSeconds)*time.Second, clock, log, m)
	catalogHandler := handlers.NewCatalogHandler(client, sessions, clock, log, cfg.CarouselSpan, time.Duration(cfg.TickSeconds)*time.Second)

	serv := &Server{
		Logger: log,
		HTTPServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Sessions: sessions,
		Cache:    cacher,
	}

	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)

	serv.CommonRoutes(mux)
	serv.CatalogRoutes(mux, catalogHandler)
	return serv
}

func (s *Server) Run() error {
	s.Logger.Infof("[SERVER] running at -> " + s.HTTPServer.Addr)
	// Create context that listens for the interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run server in the background
	go func() {
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("[SERVER] failed to serve -> " + err.Error())
		}
	}()

	// Listen for the interrupt signal
	<-ctx.Done()

	shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Tear down sessions first: cancels in-flight fetches, stops tickers.
	s.Sessions.Close()

	if err := s.Cache.Close(); err != nil {
		s.Logger.Warn("[CACHE] failed to close -> " + err.Error())
	}

	// Trigger graceful shutdown
	if err := s.HTTPServer.Shutdown(shutCtx); err != nil {
		s.Logger.Fatal("[SERVER] shutdown failed -> " + err.Error())
		return err
	}

	return nil
}
