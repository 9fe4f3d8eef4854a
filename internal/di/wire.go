//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"RWAPulse/pkg/config"
	"RWAPulse/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes infrastructure clients in reverse order.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Core
		ProvideVenueClasses,
		ProvideThresholds,
		ProvideClassifier,
		ProvideScanner,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideReportStore,

		// Repositories
		ProvideSnapshotProvider,
		ProvidePublishPipeline,

		// Rendering and use cases
		ProvidePersona,
		ProvideConsoleSink,
		ProvideDispatcher,
		ProvideMonitor,

		// HTTP
		ProvideRateLimiter,
		ProvideSignalsHandler,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return nil, nil, nil
}
