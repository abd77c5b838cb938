package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-checkout-orders/internal/checkout"
	"github.com/ariefcatur/go-checkout-orders/internal/config"
	"github.com/ariefcatur/go-checkout-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-checkout-orders/internal/kafka"
	"github.com/ariefcatur/go-checkout-orders/internal/logging"
	"github.com/ariefcatur/go-checkout-orders/internal/memstore"
	"github.com/ariefcatur/go-checkout-orders/internal/metrics"
	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/ariefcatur/go-checkout-orders/internal/postgres"
	"github.com/ariefcatur/go-checkout-orders/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New("api", reg)

	svc := &checkout.Service{
		Metrics:     m,
		ServiceName: cfg.ServiceName,
		Log:         log,
	}
	var catalog httpx.ProductLister
	var producers []*kafkax.Producer

	if cfg.InMemory() {
		cat := memstore.NewCatalog()
		memstore.Seed(cat)
		svc.Store, svc.Customers, svc.Products = memstore.NewOrders(), cat, cat
		catalog = cat
		log.Info("running with in-memory storage")
	} else {
		// DB
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.ServiceName)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				log.Error("db migrate", "err", err)
				os.Exit(1)
			}
		}
		cat := &orders.CatalogRepo{DB: db}
		svc.Store, svc.Customers, svc.Products = &orders.Repo{DB: db}, cat, cat
		catalog = cat

		// Redis
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Cache = &redisx.StatusCache{Redis: rdb}

		// Kafka producers: created & status changed
		pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
		pCreated.Start(ctx)
		pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
		pStatus.Start(ctx)
		svc.Created, svc.StatusChanged = pCreated, pStatus
		producers = append(producers, pCreated, pStatus)
	}

	router := httpx.NewRouter(m.Middleware)
	router.Handle("/metrics", metrics.Handler(reg))
	oh := &httpx.OrdersHandler{Service: svc, Catalog: catalog}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // close inbox -> flush & close writer
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}
