package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rohanjain3/AGRISMART-12/internal/config"
	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
	"github.com/rohanjain3/AGRISMART-12/internal/messaging/gochannel"
	"github.com/rohanjain3/AGRISMART-12/internal/messaging/kafka"
	"github.com/rohanjain3/AGRISMART-12/internal/metrics"
	"github.com/rohanjain3/AGRISMART-12/internal/repository"
	"github.com/rohanjain3/AGRISMART-12/internal/repository/memory"
	"github.com/rohanjain3/AGRISMART-12/internal/repository/postgres"
	"github.com/rohanjain3/AGRISMART-12/internal/repository/redis"
	"github.com/rohanjain3/AGRISMART-12/internal/seed"
	"github.com/rohanjain3/AGRISMART-12/internal/service"
)

type broker interface {
	messaging.Publisher
	messaging.Subscriber
	Close() error
}

// app holds the wired services and the resources to release on exit.
type app struct {
	cfg *config.Config

	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	delivery *service.DeliveryService
	chat     *service.ChatService
	metrics  *metrics.Metrics
	broker   broker

	closers []func() error
}

// newCatalog seeds the product store, Postgres when DATABASE_URL is set and
// memory otherwise.
func newCatalog(ctx context.Context, db *sql.DB) (*service.CatalogService, error) {
	catalog, err := seed.Default(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load seed catalog: %w", err)
	}

	var products repository.ProductRepository
	if db != nil {
		products = postgres.NewProductRepository(db)
	} else {
		products = memory.NewProductRepository()
	}
	if err := products.Seed(ctx, catalog.Products); err != nil {
		return nil, fmt.Errorf("failed to seed products: %w", err)
	}
	return service.NewCatalogService(products, catalog.Farmers), nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}
	return postgres.InitDB(ctx, cfg.Database.URL)
}

func buildApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg, metrics: metrics.New(), chat: service.NewChatService()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// --- Database ---
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if db != nil {
		a.closers = append(a.closers, db.Close)
	}

	a.catalog, err = newCatalog(ctx, db)
	if err != nil {
		return nil, err
	}

	// --- Cart event store ---
	var events repository.EventStore
	switch {
	case cfg.Redis.Addr != "":
		var client *goredis.Client
		client, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		events = redis.NewEventStore(client)
		slog.Info("Cart events stored in Redis", "addr", cfg.Redis.Addr)
	case db != nil:
		events = postgres.NewEventStore(db)
		slog.Info("Cart events stored in Postgres")
	default:
		events = memory.NewEventStore()
	}

	a.cart, err = service.NewCartService(ctx, events, cfg.Cart.ID, cfg.Cart.MinQuantity)
	if err != nil {
		return nil, err
	}

	// --- Event bus ---
	if len(cfg.Kafka.Brokers) > 0 {
		a.broker = kafka.NewKafkaBroker(cfg.Kafka.Brokers)
		slog.Info("Event bus on Kafka", "brokers", cfg.Kafka.Brokers)
	} else {
		a.broker = gochannel.NewBroker(slog.Default())
	}
	a.closers = append(a.closers, a.broker.Close)

	// --- Orders ---
	var orders repository.OrderRepository
	if db != nil {
		orders = postgres.NewOrderRepository(db)
	} else {
		orders = memory.NewOrderRepository()
	}
	a.orders = service.NewOrderService(orders, a.cart, a.broker)

	a.delivery, err = service.NewDeliveryService(cfg.Delivery.Pincodes)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
