package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"RWAPulse/internal/domain/models"
	"RWAPulse/internal/domain/repository"
	"RWAPulse/internal/handler/api"
	mid "RWAPulse/internal/middleware"
	"RWAPulse/internal/render"
	internalrepo "RWAPulse/internal/repository"
	"RWAPulse/internal/service/cache"
	"RWAPulse/internal/service/ratelimit"
	"RWAPulse/internal/services/analytics"
	"RWAPulse/internal/usecase"
	pkgch "RWAPulse/pkg/clickhouse"
	"RWAPulse/pkg/config"
	xhttp "RWAPulse/pkg/http"
	pkgkafka "RWAPulse/pkg/kafka"
	"RWAPulse/pkg/logger"
	"RWAPulse/pkg/metrics"
	"RWAPulse/pkg/server"
)

// ProvideLogger builds the process logger from the logging section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return repository.NoopMetrics{}
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideVenueClasses builds the on-chain/off-chain partition.
func ProvideVenueClasses(cfg *config.Config) (models.VenueClasses, error) {
	vc, err := models.NewVenueClasses(cfg.Venues.OnChain, cfg.Venues.OffChain)
	if err != nil {
		return nil, &analytics.ConfigError{Option: "venues", Reason: err.Error()}
	}
	return vc, nil
}

func ProvideThresholds(cfg *config.Config) analytics.ThresholdConfig {
	return cfg.SignalThresholds()
}

// ProvideClassifier fails on invalid thresholds before any record is read.
func ProvideClassifier(th analytics.ThresholdConfig) (*analytics.SignalClassifier, error) {
	return analytics.NewSignalClassifier(th)
}

func ProvideScanner(
	cfg *config.Config,
	vc models.VenueClasses,
	cls *analytics.SignalClassifier,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.SignalScanner {
	return usecase.NewSignalScanner(
		analytics.NewNormalizer(vc),
		analytics.NewDivergenceAnalyzer(vc),
		cls,
		usecase.WithScanWorkers(cfg.Monitor.Workers),
		usecase.WithScanMetrics(m),
		usecase.WithScanLogger(l),
	)
}

// ProvideClickHouseClient connects only when ClickHouse is the snapshot source; otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config, l *logger.Logger) (*pkgch.Client, func(), error) {
	if cfg.Provider.Type != "clickhouse" {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 0),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, internalrepo.SnapshotSchema(cfg.ClickHouse.QuotesTable, cfg.ClickHouse.SupplyTable)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse ready", logger.String("database", cfg.ClickHouse.Database))

	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", logger.Error(err))
		}
	}, nil
}

// ProvideSnapshotProvider selects the snapshot source named by provider.type.
func ProvideSnapshotProvider(
	cfg *config.Config,
	vc models.VenueClasses,
	ch *pkgch.Client,
	l *logger.Logger,
) (repository.SnapshotProvider, error) {
	pc := cfg.Provider
	switch pc.Type {
	case "file":
		return internalrepo.NewFileSnapshotProvider(pc.File.Path,
			internalrepo.WithFileSample(pc.File.Sample, pc.Synthetic.Seed),
		), nil
	case "synthetic":
		assets := make([]internalrepo.SyntheticAsset, 0, len(pc.Synthetic.Watchlist))
		for _, w := range pc.Synthetic.Watchlist {
			assets = append(assets, internalrepo.SyntheticAsset{
				ID:                w.ID,
				Name:              w.Name,
				BasePrice:         w.BasePrice,
				VolatilityProfile: w.VolatilityProfile,
				OnChainSupply:     w.OnChainSupply,
				OffChainSupply:    w.OffChainSupply,
			})
		}
		return internalrepo.NewSyntheticProvider(assets, vc,
			internalrepo.WithSyntheticSeed(pc.Synthetic.Seed),
			internalrepo.WithWindowDays(pc.Synthetic.WindowDays),
			internalrepo.WithMaxDrift(pc.Synthetic.MaxDrift),
		), nil
	case "http":
		client := xhttp.NewClient(
			xhttp.WithTimeout(pc.HTTP.Timeout),
			xhttp.WithRetry(pc.HTTP.Retries, 200*time.Millisecond, 5*time.Second),
		)
		return internalrepo.NewHTTPSnapshotProvider(client, pc.HTTP.URL,
			internalrepo.WithHTTPLogger(l),
			internalrepo.WithHTTPSample(pc.HTTP.Sample, pc.Synthetic.Seed),
		), nil
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("clickhouse provider selected without a client")
		}
		return internalrepo.NewCHSnapshotProvider(ch, cfg.ClickHouse.QuotesTable, cfg.ClickHouse.SupplyTable, l)
	default:
		return nil, &analytics.ConfigError{Option: "provider.type", Reason: fmt.Sprintf("unknown provider %q", pc.Type)}
	}
}

// ProvideKafkaProducer creates a Kafka producer, or nil when publishing is off.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublishPipeline puts the retry buffer in front of the Kafka publisher.
// It returns nil when there is no producer.
func ProvidePublishPipeline(cfg *config.Config, producer *pkgkafka.Producer, m repository.Metrics) *mid.PublishPipeline {
	if producer == nil {
		return nil
	}
	pub := internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
	return mid.NewPublishPipeline(pub, m, mid.WithBufferSize(cfg.Kafka.Pipeline.BufferSize))
}

func ProvidePersona() (*render.Persona, error) {
	return render.NewPersona()
}

// ProvideConsoleSink returns nil when rendering is disabled.
func ProvideConsoleSink(cfg *config.Config) *render.ConsoleSink {
	if !cfg.Render.Enabled {
		return nil
	}
	return render.NewConsoleSink(os.Stdout,
		render.WithPacing(cfg.Render.Pacing),
		render.WithBanner(cfg.Render.Banner),
	)
}

func ProvideDispatcher(
	persona *render.Persona,
	sink *render.ConsoleSink,
	pipe *mid.PublishPipeline,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.SignalDispatcher {
	opts := []usecase.DispatcherOption{
		usecase.WithDispatchMetrics(m),
		usecase.WithDispatchLogger(l),
	}
	if sink != nil {
		opts = append(opts, usecase.WithConsoleSink(sink))
	}
	// a nil *PublishPipeline must not become a non-nil interface
	if pipe != nil {
		opts = append(opts, usecase.WithPublisher(pipe))
	}
	return usecase.NewSignalDispatcher(persona, opts...)
}

// ProvideReportStore keeps the latest report in Redis when enabled, in memory otherwise.
func ProvideReportStore(cfg *config.Config, l *logger.Logger) (repository.ReportStore, func(), error) {
	rc := cfg.Cache.Redis
	if !rc.Enabled {
		return cache.NewReportCache(cache.NewTTLCache(), rc.Key, cfg.Cache.TTL), func() {}, nil
	}

	rdb := cache.NewRedisCache(cache.RedisConfig{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", rc.Addr, err)
	}
	l.Info("report cache on redis", logger.String("addr", rc.Addr))

	return cache.NewReportCache(rdb, rc.Key, cfg.Cache.TTL), func() {
		if err := rdb.Close(); err != nil {
			l.Warn("redis close error", logger.Error(err))
		}
	}, nil
}

func ProvideMonitor(
	cfg *config.Config,
	provider repository.SnapshotProvider,
	scanner *usecase.SignalScanner,
	dispatcher *usecase.SignalDispatcher,
	store repository.ReportStore,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.SignalMonitor {
	return usecase.NewSignalMonitor(provider, scanner, dispatcher,
		usecase.WithMonitorInterval(cfg.Monitor.Interval),
		usecase.WithReportStore(store),
		usecase.WithMonitorMetrics(m),
		usecase.WithMonitorLogger(l),
	)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

func ProvideSignalsHandler(
	cfg *config.Config,
	l *logger.Logger,
	vc models.VenueClasses,
	th analytics.ThresholdConfig,
	scanner *usecase.SignalScanner,
	monitor *usecase.SignalMonitor,
	persona *render.Persona,
	limiter *ratelimit.Limiter,
) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(l, scanner, monitor, persona, limiter, api.Settings{
		Provider:   cfg.Provider.Type,
		OnChain:    vc.Venues(models.OnChain),
		OffChain:   vc.Venues(models.OffChain),
		Thresholds: th,
		Interval:   cfg.Monitor.Interval.String(),
	})
}

func ProvideHTTPServer(cfg *config.Config, h *api.SignalsEchoHandler, l *logger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer([]xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	monitor *usecase.SignalMonitor,
	pipe *mid.PublishPipeline,
	httpServer *xhttp.Server,
	sink *render.ConsoleSink,
	provider repository.SnapshotProvider,
) *server.App {
	return server.New(cfg, l, monitor, pipe, httpServer, sink, provider.Name())
}
