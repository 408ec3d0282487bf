package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/shaibs3/newsboard/internal/app"
	"github.com/shaibs3/newsboard/internal/auth"
	"github.com/shaibs3/newsboard/internal/config"
	"github.com/shaibs3/newsboard/internal/fixtures"
	"github.com/shaibs3/newsboard/internal/logger"
	"github.com/shaibs3/newsboard/internal/store"
	"github.com/shaibs3/newsboard/internal/store/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var port string

	root := &cobra.Command{
		Use:          "newsboard",
		Short:        "News and discussion REST API",
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}
	root.Flags().StringVar(&port, "port", "", "server port (overrides PORT)")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	return root
}

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "server port (overrides PORT)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = appLogger.Sync() }()

			migrator, err := openMigrator(cfg, appLogger)
			if err != nil {
				return err
			}
			defer migrator.Close()
			return migrator.Migrate(cmd.Context())
		},
	}
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the Postgres content with fixture data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = appLogger.Sync() }()

			f, err := loadFixtures(file)
			if err != nil {
				return err
			}
			data, err := f.Dataset(auth.NewHasher(cfg.BcryptCost).HashPassword)
			if err != nil {
				return err
			}

			migrator, err := openMigrator(cfg, appLogger)
			if err != nil {
				return err
			}
			defer migrator.Close()

			if err := migrator.Migrate(cmd.Context()); err != nil {
				return err
			}
			return migrator.Seed(cmd.Context(), data)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML fixtures file (default: built-in sample data)")
	return cmd
}

// bootstrap loads configuration with a temporary logger, then builds the
// configured one.
func bootstrap() (*config.Config, *zap.Logger, error) {
	initialLogger, err := logger.NewLogger("production", "info")
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer func() {
		_ = initialLogger.Sync()
	}()

	cfg := config.Load(initialLogger)

	appLogger, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create application logger: %w", err)
	}
	return cfg, appLogger, nil
}

func runServe(port string) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = appLogger.Sync()
	}()
	if port != "" {
		cfg.Port = port
	}

	appLogger.Info("Build info",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	application, err := app.NewApp(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", zap.Error(err))
		return err
	}
	return application.Run()
}

func openMigrator(cfg *config.Config, appLogger *zap.Logger) (*postgres.Migrator, error) {
	var dbConfig store.DbProviderConfig
	if err := json.Unmarshal([]byte(cfg.DBConfig), &dbConfig); err != nil {
		return nil, fmt.Errorf("failed to parse database configuration JSON: %w", err)
	}
	if dbConfig.DbType != store.DbTypePostgres {
		return nil, fmt.Errorf("schema commands need a postgres database, got %q", dbConfig.DbType)
	}
	connStr := dbConfig.String("conn_str")
	if connStr == "" {
		return nil, fmt.Errorf("conn_str is required for Postgres provider")
	}
	return postgres.NewMigrator(connStr, appLogger)
}

func loadFixtures(path string) (fixtures.Fixtures, error) {
	if path == "" {
		return fixtures.Sample()
	}
	return fixtures.LoadFile(path)
}
