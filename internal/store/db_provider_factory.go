package store

import (
	"encoding/json"
	"fmt"

	"github.com/shaibs3/newsboard/internal/store/postgres"
	"github.com/shaibs3/newsboard/internal/store/shared"
	"github.com/shaibs3/newsboard/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ProviderFactory defines the interface for creating database providers
type ProviderFactory interface {
	CreateProvider(configJSON string) (DbProvider, error)
}

// DbProviderFactory builds providers from their JSON configuration
type DbProviderFactory struct {
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
}

func NewDbProviderFactory(logger *zap.Logger, tel *telemetry.Telemetry) *DbProviderFactory {
	return &DbProviderFactory{
		logger:    logger.Named("factory"),
		telemetry: tel,
	}
}

func (f *DbProviderFactory) CreateProvider(configJSON string) (DbProvider, error) {
	var config shared.DbProviderConfig
	if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
		return nil, fmt.Errorf("failed to parse database configuration JSON: %w", err)
	}

	f.logger.Info("creating database provider", zap.String("db_type", config.DbType.String()))

	if !config.DbType.IsValid() {
		return nil, fmt.Errorf("unsupported database type: %s", config.DbType)
	}

	var meter metric.Meter
	if f.telemetry != nil {
		meter = f.telemetry.Meter
	}

	var provider DbProvider
	switch config.DbType {
	case shared.DbTypePostgres:
		pg, err := postgres.NewPostgresProvider(config, f.logger)
		if err != nil {
			return nil, err
		}
		provider = pg
	case shared.DbTypeMemory:
		f.logger.Info("using in-memory provider")
		provider = NewInMemoryProvider()
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.DbType)
	}

	if meter == nil {
		return provider, nil
	}
	instrumented, err := NewInstrumentedProvider(provider, meter, config.DbType)
	if err != nil {
		return nil, err
	}
	return instrumented, nil
}
