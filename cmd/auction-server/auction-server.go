package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auctions/db"
	"auctions/db/migrations"
	"auctions/internal/clock"
	"auctions/internal/config"
	"auctions/internal/engine"
	"auctions/internal/events"
	"auctions/internal/handlers"
	"auctions/internal/memstore"
	"auctions/internal/metrics"
	"auctions/internal/watchers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ERROR: config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store engine.Store
		watch engine.WatcherStore
	)
	if cfg.PostgresConn != "" {
		dbConn, err := connect(ctx, cfg.PostgresConn)
		if err != nil {
			log.Fatalf("ERROR: cannot connect to DB: %v", err)
		}
		defer dbConn.Close()

		if err := migrations.Run(dbConn.DB); err != nil {
			log.Fatalf("ERROR: migrations: %v", err)
		}
		log.Printf("INFO: migrations applied")

		storage := db.NewStorage(dbConn)
		store, watch = storage, storage
	} else {
		log.Printf("WARN: POSTGRES_CONN is not set, using in-memory store")
		store, watch = memstore.New(), watchers.NewRegistry()
	}

	bus := events.NewBus(cfg.EventBuffer)
	eng := engine.New(store, watch, clock.NewGuarded(clock.System{}, cfg.MaxClockSkew), bus, engine.Options{
		TickWorkers: cfg.TickWorkers,
		Metrics:     metrics.New(prometheus.DefaultRegisterer),
	})
	h := handlers.NewHandler(eng, bus, cfg.AdminToken)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           newRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("INFO: starting server on %s", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return eng.Run(gctx, cfg.TickInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("INFO: shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	log.Printf("INFO: server stopped")
}

func newRouter(h *handlers.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// аукционы
		r.Post("/auctions", h.CreateAuctionHandler)
		r.Get("/auctions", h.GetAuctionsHandler)
		r.Get("/auctions/{auctionId}", h.GetAuctionHandler)
		// ставки
		r.Post("/auctions/{auctionId}/bids", h.PlaceBidHandler)
		r.Get("/auctions/{auctionId}/bids", h.GetBidsHandler)
		r.Get("/auctions/{auctionId}/bidders", h.GetBiddersHandler)
		r.With(h.AdminOnly).Post("/auctions/{auctionId}/winner", h.DeclareWinnerHandler)
		// наблюдатели
		r.Put("/auctions/{auctionId}/watchers/{bidderId}", h.WatchHandler)
		r.Delete("/auctions/{auctionId}/watchers/{bidderId}", h.UnwatchHandler)
		// участники
		r.Post("/bidders", h.CreateBidderHandler)
		r.Get("/bidders/{bidderId}", h.GetBidderHandler)
		// события
		r.Get("/events", h.GetEventsHandler)
		r.Get("/auctions/{auctionId}/events/ws", h.StreamEventsHandler)
	})
	return r
}

// connect ждёт, пока postgres станет доступен (в docker-compose база поднимается позже сервиса)
func connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	var dbConn *sqlx.DB
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			log.Printf("WARN: connect to DB: %v", err)
			return retry.RetryableError(err)
		}
		dbConn = conn
		return nil
	})
	return dbConn, err
}
