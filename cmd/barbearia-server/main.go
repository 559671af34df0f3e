package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"google.golang.org/api/option"
	"google.golang.org/grpc"

	"barbearia/backend/internal/calendar"
	"barbearia/backend/internal/config"
	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/events"
	"barbearia/backend/internal/observability"
	"barbearia/backend/internal/service/bookings"
	"barbearia/backend/internal/store"
	"barbearia/backend/internal/store/memory"
	"barbearia/backend/internal/store/postgres"
	"barbearia/backend/internal/store/rediscache"
	grpcTransport "barbearia/backend/internal/transport/grpc"
	"barbearia/backend/internal/transport/httpapi"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "barbearia-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "barbearia-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Error("catalog load failed", slog.Any("err", err), slog.String("catalog_file", cfg.CatalogFile))
		os.Exit(1)
	}

	shutdownTracing, err := observability.Setup(ctx, observability.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  "barbearia-server",
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("tracing setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("err", err))
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		log.Error("metrics setup failed", slog.Any("err", err))
		os.Exit(1)
	}

	checker := httpapi.NewChecker(2 * time.Second)

	repo, db, err := openStore(cfg, log)
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	if db != nil {
		defer func() {
			if err := postgres.Close(db); err != nil {
				log.Warn("database close failed", slog.Any("err", err))
			}
		}()
		checker.Add("database", func(ctx context.Context) error { return postgres.Ping(ctx, db) })
	}

	var (
		source      calendar.BookedIntervalSource = calendar.NewStoreSource(repo)
		sink        calendar.EventSink            = calendar.NopSink{}
		invalidator bookings.CacheInvalidator
	)

	if cfg.GoogleCalendarEnabled {
		gc, err := calendar.NewGoogleCalendar(ctx, calendar.GoogleConfig{
			Timezone:     catalog.Timezone,
			ContactEmail: catalog.ContactEmail,
			Logger:       log,
		}, googleOptions(cfg)...)
		if err != nil {
			log.Error("google calendar setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		source = calendar.NewMultiSource(source, gc)
		sink = gc
		log.Info("google calendar enabled")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		cached := calendar.NewCachedSource(source, rediscache.NewIntervalCache(rdb, cfg.CacheTTL), log)
		source = cached
		invalidator = cached
		checker.Add("redis", func(ctx context.Context) error { return rediscache.Ping(ctx, rdb) })
		log.Info("interval cache enabled", slog.String("redis_addr", cfg.RedisAddr), slog.Duration("ttl", cfg.CacheTTL))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if brokers := events.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		checker.Add("kafka", events.ReadyCheck(brokers))
		log.Info("booking events enabled", slog.Any("brokers", brokers), slog.String("topic", cfg.KafkaTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("event publisher close failed", slog.Any("err", err))
		}
	}()

	fetchPolicy, err := bookings.ParseFetchFailurePolicy(cfg.FetchFailurePolicy)
	if err != nil {
		log.Error("invalid fetch failure policy", slog.Any("err", err))
		os.Exit(1)
	}
	malformedPolicy, err := bookings.ParseMalformedPolicy(cfg.MalformedPolicy)
	if err != nil {
		log.Error("invalid malformed policy", slog.Any("err", err))
		os.Exit(1)
	}

	svc, err := bookings.NewService(bookings.Deps{
		Catalog:            catalog,
		Repo:               repo,
		Source:             source,
		Sink:               sink,
		Publisher:          publisher,
		Invalidator:        invalidator,
		Metrics:            metrics,
		Logger:             log,
		FetchTimeout:       cfg.FetchTimeout,
		FetchFailurePolicy: fetchPolicy,
		MalformedPolicy:    malformedPolicy,
	})
	if err != nil {
		log.Error("booking service setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	logCatalog(log, catalog)

	grpcServer, healthServer := grpcTransport.NewServer(svc, log, cfg.GRPCRequestTimeout)
	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.RouterConfig{
			Service:   svc,
			Checker:   checker,
			Logger:    log,
			RateRPS:   cfg.RateLimitRPS,
			RateBurst: cfg.RateLimitBurst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("servers started", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("http_addr", cfg.HTTPAddr))

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("server stopped with error", slog.Any("err", err))
			exitCode = 1
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	if err := httpServer.Shutdown(sctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}
	cancel()
	grpcTransport.Shutdown(log, grpcServer, healthServer, cfg.ShutdownTimeout)

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// openStore returns the booking repository for the configured driver. The
// bun handle is nil for the in-memory store.
func openStore(cfg config.Config, log *slog.Logger) (store.BookingRepository, *bun.DB, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store; bookings are lost on restart")
		return memory.New(), nil, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewBookingRepo(db), db, nil
}

func googleOptions(cfg config.Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	if cfg.GoogleAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.GoogleAPIKey))
	}
	return opts
}

func logCatalog(log *slog.Logger, c domain.Catalog) {
	barbers := make([]string, 0, len(c.Barbers))
	for _, b := range c.Barbers {
		barbers = append(barbers, b.ID)
	}
	services := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		services = append(services, s.ID)
	}
	log.Info("catalog loaded",
		slog.String("timezone", c.Timezone),
		slog.Duration("grid", c.GridInterval()),
		slog.Duration("buffer", c.Buffer()),
		slog.Any("barbers", barbers),
		slog.Any("services", services),
	)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
