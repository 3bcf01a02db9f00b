package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rohanjain3/AGRISMART-12/internal/config"
	deliveryhttp "github.com/rohanjain3/AGRISMART-12/internal/delivery/http"
	"github.com/rohanjain3/AGRISMART-12/internal/logger"
	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
	"github.com/rohanjain3/AGRISMART-12/internal/service"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON HTTP API together with the event consumers.

Storage and messaging follow the environment:
  DATABASE_URL   Postgres for products, orders and cart events
  REDIS_ADDR     Redis for cart events
  KAFKA_BROKERS  Kafka for cart.events and orders.placed

Without them everything is kept in process memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger.Init(os.Stdout, cfg.IsProduction(), cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// --- Events ---
	stopForwarding := service.ForwardCartEvents(a.cart, a.broker)
	defer stopForwarding()

	var consumers sync.WaitGroup
	for _, topic := range []string{messaging.TopicCartEvents, messaging.TopicOrdersPlaced} {
		consumers.Add(1)
		go func(topic string) {
			defer consumers.Done()
			if err := a.broker.Consume(ctx, topic, cfg.Kafka.GroupID+"-metrics", a.metrics.CountEvent); err != nil {
				slog.Error("Consumer stopped", "topic", topic, "err", err)
			}
		}(topic)
	}

	// --- HTTP API ---
	mux := http.NewServeMux()
	deliveryhttp.NewHandler(a.catalog, a.cart, a.orders, a.delivery, a.chat).RegisterRoutes(mux)
	mux.Handle("GET /metrics", a.metrics.Handler())

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: deliveryhttp.EnableCORS(a.metrics.Middleware(mux)),
	}

	go func() {
		slog.Info("HTTP server starting", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "err", err)
	}
	consumers.Wait()
	return nil
}
