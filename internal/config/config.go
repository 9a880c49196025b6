package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StoragePebble   = "pebble"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	StorageDriver string `env:"STORAGE_DRIVER"`
	StateFile     string `env:"STATE_FILE"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	PebbleDir     string `env:"PEBBLE_DIR"`
	RedisAddr     string `env:"REDIS_ADDR"`
	LogLevel      string `env:"LOG_LEVEL"`

	// Параметры ниже задаются только через окружение.
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	CORSOrigins    []string      `env:"CORS_ORIGINS"    envDefault:"*"        envSeparator:","`
	DemoUsername   string        `env:"DEMO_USERNAME"   envDefault:"demo"`
	DemoBalance    int64         `env:"DEMO_BALANCE"    envDefault:"30000"`
}

// LoadConfig читает .env (если есть), переменные окружения и флаги командной строки.
// Значения из окружения приоритетнее флагов.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(flag.CommandLine, os.Args[1:])
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func load(flagSet *flag.FlagSet, args []string) (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %w", envParseErr)
	}

	if flagsErr := loadFlags(flagSet, args, &flagsConfig); flagsErr != nil {
		return nil, flagsErr
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func loadFlags(flagSet *flag.FlagSet, args []string, flagConfig *Config) error {
	flagSet.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flagSet.StringVar(&flagConfig.StorageDriver, "s", StorageFile, "Storage driver: memory, file, postgres or pebble")
	flagSet.StringVar(&flagConfig.StateFile, "f", "data/db.json", "State file for the file storage driver")
	flagSet.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flagSet.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flagSet.StringVar(&flagConfig.PebbleDir, "p", "data/pebble", "Pebble directory for the pebble storage driver")
	flagSet.StringVar(&flagConfig.RedisAddr, "r", "", "Redis address for idempotency keys, in-memory store if empty")
	flagSet.StringVar(&flagConfig.LogLevel, "l", "", "Log level")

	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:     defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		StorageDriver:  defaultIfBlank(envConfig.StorageDriver, flagsConfig.StorageDriver),
		StateFile:      defaultIfBlank(envConfig.StateFile, flagsConfig.StateFile),
		DatabaseDSN:    defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:  defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		PebbleDir:      defaultIfBlank(envConfig.PebbleDir, flagsConfig.PebbleDir),
		RedisAddr:      defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr),
		LogLevel:       defaultIfBlank(envConfig.LogLevel, flagsConfig.LogLevel),
		IdempotencyTTL: envConfig.IdempotencyTTL,
		CORSOrigins:    envConfig.CORSOrigins,
		DemoUsername:   envConfig.DemoUsername,
		DemoBalance:    envConfig.DemoBalance,
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// Validate проверяет согласованность настроек выбранного хранилища.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageMemory:
	case StorageFile:
		if c.StateFile == "" {
			errs = append(errs, errors.New("state file is not set"))
		}
	case StoragePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("database DSN is not set"))
		}
	case StoragePebble:
		if c.PebbleDir == "" {
			errs = append(errs, errors.New("pebble directory is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.StorageDriver))
	}

	if c.DemoBalance < 0 {
		errs = append(errs, fmt.Errorf("demo balance must not be negative, got %d", c.DemoBalance))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Errorf("idempotency ttl must be positive, got %s", c.IdempotencyTTL))
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("bad cors origin %q", o))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
