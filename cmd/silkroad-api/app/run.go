package app

import (
	"context"
	"database/sql"
	"fmt"
	nethttp "net/http"

	"github.com/duality-2/SilkRoad/configs"
	"github.com/duality-2/SilkRoad/internal/adapter/cache"
	"github.com/duality-2/SilkRoad/internal/adapter/http"
	"github.com/duality-2/SilkRoad/internal/adapter/http/middleware"
	"github.com/duality-2/SilkRoad/internal/adapter/kafka"
	"github.com/duality-2/SilkRoad/internal/adapter/observ"
	"github.com/duality-2/SilkRoad/internal/adapter/queue"
	"github.com/duality-2/SilkRoad/internal/adapter/repo"
	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
	Server *nethttp.Server
}

// closers run in reverse order of registration.
type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// InitWithConfig wires every adapter selected by cfg. Background workers stop
// when ctx is done.
func InitWithConfig(ctx context.Context, cfg configs.Config) (*App, func(), error) {
	logging.Init(logging.Options{
		Component: cfg.App.Name,
		FilePath:  cfg.App.LogFile,
		Level:     cfg.App.LogLevel,
	})
	l := logging.New("bootstrap")
	l.Info("silkroad-api: starting up", "storage", cfg.Storage.Driver)

	var cleanup closers
	fail := func(err error) (*App, func(), error) {
		cleanup.run()
		return nil, nil, err
	}

	store, lock, err := initStorage(ctx, cfg, &cleanup)
	if err != nil {
		return fail(err)
	}
	metrics := observ.NewPromMetrics(prometheus.DefaultRegisterer)

	// optional publishers stay nil interfaces when not configured
	var orders usecase.OrderEventPublisher
	if cfg.Rabbit.URL != "" {
		p, err := initRabbit(cfg, &cleanup)
		if err != nil {
			return fail(err)
		}
		orders = p
	}

	var activity usecase.ActivityPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := initKafka(ctx, cfg, &cleanup)
		if err != nil {
			return fail(err)
		}
		activity = p
	}

	sessions := usecase.NewRegistry(usecase.SessionDeps{
		Store:     store,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Orders:    orders,
		Activity:  activity,
		Metrics:   metrics,
	})
	if cfg.Session.EvictInterval > 0 && cfg.Session.MaxIdle > 0 {
		go sessions.RunEviction(ctx, cfg.Session.EvictInterval, cfg.Session.MaxIdle)
	}

	payments := usecase.NewPaymentSimulator(lock, sessions, metrics, usecase.PaymentOptions{
		Delay:       cfg.Payment.Delay,
		DeclineRate: cfg.Payment.DeclineRate,
	})
	tracking := usecase.NewTrackingService(metrics, usecase.TrackingOptions{Delay: cfg.Tracking.Delay})
	contact := usecase.NewContactService(usecase.ContactOptions{Delay: cfg.Contact.Delay})

	reqTimeout := cfg.HTTP.RequestTimeout
	auth := middleware.NewSessionAuth(cfg)
	router := http.NewRouter(http.Handlers{
		Sessions: http.NewSessionHandler(sessions, auth, reqTimeout),
		Cart:     http.NewCartHandler(sessions, reqTimeout),
		Checkout: http.NewCheckoutHandler(sessions, reqTimeout),
		Payments: http.NewPaymentHandler(payments, cfg.Payment.Delay+reqTimeout),
		Tracking: http.NewTrackingHandler(tracking, cfg.Tracking.Delay+reqTimeout),
		Contact:  http.NewContactHandler(contact, cfg.Contact.Delay+reqTimeout),
	}, auth, logging.New("http"))

	srv := &nethttp.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	return &App{Router: router, Server: srv}, cleanup.run, nil
}

func initStorage(ctx context.Context, cfg configs.Config, cleanup *closers) (usecase.SnapshotStore, usecase.PaymentLock, error) {
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanup.add(func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
	}

	// payments lock through redis whenever it is reachable, so several
	// replicas agree on pending payments
	var lock usecase.PaymentLock = cache.NewMemoryPaymentLock()
	if rdb != nil {
		lock = cache.NewRedisPaymentLock(rdb, cfg.Payment.LockTTL)
	}

	switch cfg.Storage.Driver {
	case "redis":
		return cache.NewRedisSnapshotStore(rdb, cfg.Storage.TTL), lock, nil
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		cleanup.add(func() { _ = db.Close() })
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, fmt.Errorf("mysql ping: %w", err)
		}
		r := repo.NewMySQLSnapshotRepo(db)
		if err := r.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return r, lock, nil
	default:
		return cache.NewMemorySnapshotStore(), lock, nil
	}
}

// initRabbit declares the topology, returns the publisher and starts the
// confirmation consumer on its own channel.
func initRabbit(cfg configs.Config, cleanup *closers) (*queue.RabbitProducer, error) {
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	cleanup.add(func() { _ = conn.Close() })

	pubCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	topo := rabbitTopology(cfg)
	producer, err := queue.NewRabbitProducer(pubCh, topo)
	if err != nil {
		return nil, err
	}

	subCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	router := queue.NewRouter(subCh, routerOptions(cfg)...)
	router.Register(topo.Queue, queue.NewOrderConfirmedHandler(&queue.LogNotifier{}).Handler())
	if err := router.Start(); err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}
	return producer, nil
}

// rabbitTopology fills unset names from the default topology.
func rabbitTopology(cfg configs.Config) queue.Topology {
	topo := queue.DefaultTopology()
	if cfg.Rabbit.Exchange != "" {
		topo.Exchange = cfg.Rabbit.Exchange
	}
	if cfg.Rabbit.RoutingKey != "" {
		topo.RoutingKey = cfg.Rabbit.RoutingKey
	}
	if cfg.Rabbit.Queue != "" {
		topo.Queue = cfg.Rabbit.Queue
	}
	return topo
}

func routerOptions(cfg configs.Config) []queue.RouterOption {
	var opts []queue.RouterOption
	if cfg.Rabbit.Prefetch > 0 {
		opts = append(opts, queue.WithPrefetch(cfg.Rabbit.Prefetch))
	}
	if cfg.Rabbit.HandlerTimeout > 0 {
		opts = append(opts, queue.WithTimeout(cfg.Rabbit.HandlerTimeout))
	}
	return opts
}

func initKafka(ctx context.Context, cfg configs.Config, cleanup *closers) (*kafka.ActivityProducer, error) {
	sp, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	producer := kafka.NewActivityProducer(sp, cfg.Kafka.TopicActivity)
	cleanup.add(func() { _ = producer.Close() })

	if cfg.Kafka.AuditGroup == "" {
		return producer, nil
	}
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.AuditGroup)
	if err != nil {
		return nil, fmt.Errorf("kafka group: %w", err)
	}
	cleanup.add(func() { _ = grp.Close() })

	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.TopicActivity}, kafka.AuditLog(logging.New("cart-audit")))
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("cart-audit").Error("activity consumer stopped", "err", err)
		}
	}()
	return producer, nil
}
