package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds the process-wide settings. It is read once at startup and
// passed to the components that need it.
type Config struct {
	Environment string        `yaml:"environment"`
	LogLevel    string        `yaml:"log_level"`
	Port        string        `yaml:"port"`
	RPSLimit    float64       `yaml:"rps_limit"`
	RPSBurst    int           `yaml:"rps_burst"`
	DBConfig    string        `yaml:"db_config"`
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
	SeedSample  bool          `yaml:"seed_sample"`
}

// Default returns a Config with development defaults and the in-memory store.
func Default() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Port:        "9090",
		RPSLimit:    100,
		RPSBurst:    200,
		DBConfig:    `{"db_type":"memory","extra_details":{}}`,
		TokenSecret: "newsboard-dev-secret",
		TokenTTL:    24 * time.Hour,
		BcryptCost:  10,
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, an optional .env file and finally the process environment.
func Load(logger *zap.Logger) *Config {
	log := logger.Named("config")

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", zap.Error(err))
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			log.Warn("ignoring config file", zap.String("path", path), zap.Error(err))
		}
	}

	applyEnv(cfg, log)

	if cfg.TokenSecret == Default().TokenSecret && cfg.Environment == "production" {
		log.Warn("TOKEN_SECRET is not set, using the development signing key")
	}

	log.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("port", cfg.Port),
		zap.Float64("rps_limit", cfg.RPSLimit),
		zap.Int("rps_burst", cfg.RPSBurst),
		zap.Duration("token_ttl", cfg.TokenTTL),
		zap.Bool("seed_sample", cfg.SeedSample),
	)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config, log *zap.Logger) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("RPS_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RPSLimit = f
		} else {
			log.Warn("invalid RPS_LIMIT, keeping default", zap.String("value", v))
		}
	}
	if v := os.Getenv("RPS_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RPSBurst = n
		} else {
			log.Warn("invalid RPS_BURST, keeping default", zap.String("value", v))
		}
	}
	if v := os.Getenv("DB_CONFIG"); v != "" {
		cfg.DBConfig = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DBConfig = postgresConfig(v)
	}
	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TokenTTL = d
		} else {
			log.Warn("invalid TOKEN_TTL, keeping default", zap.String("value", v))
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = n
		} else {
			log.Warn("invalid BCRYPT_COST, keeping default", zap.String("value", v))
		}
	}
	if v := os.Getenv("SEED_SAMPLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SeedSample = b
		} else {
			log.Warn("invalid SEED_SAMPLE, keeping default", zap.String("value", v))
		}
	}
}

// postgresConfig wraps a connection string into the provider JSON format.
func postgresConfig(connStr string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"db_type": "postgres",
		"extra_details": map[string]interface{}{
			"conn_str": connStr,
		},
	})
	return string(b)
}
