package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3002" validate:"min=1,max=65535"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	Database  DatabaseConfig
	Graph     GraphConfig
	Scheduler SchedulerConfig
	Otel      OtelConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"330s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost" validate:"required"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432" validate:"min=1,max=65535"`
	User         string        `env:"POSTGRES_USER" envDefault:"kartograph" validate:"required"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"kartograph" validate:"required"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25" validate:"min=1"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5" validate:"min=0"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`

	// AutoMigrate applies pending goose migrations when the server starts.
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// GraphConfig holds settings for the AGE graph and the read-only query path.
type GraphConfig struct {
	// Name of the AGE graph; also the schema holding the label tables.
	Name string `env:"GRAPH_NAME" envDefault:"kartograph_graph" validate:"required,max=63"`

	// Length of the random dollar-quote tag wrapped around every cypher() call.
	DelimiterLength int `env:"GRAPH_DELIMITER_LENGTH" envDefault:"64" validate:"min=16,max=128"`

	QueryDefaultTimeoutSeconds int `env:"QUERY_DEFAULT_TIMEOUT_SECONDS" envDefault:"30" validate:"min=1"`
	QueryMaxTimeoutSeconds     int `env:"QUERY_MAX_TIMEOUT_SECONDS" envDefault:"300" validate:"min=1,gtefield=QueryDefaultTimeoutSeconds"`
	QueryDefaultMaxRows        int `env:"QUERY_DEFAULT_MAX_ROWS" envDefault:"1000" validate:"min=1"`
	QueryMaxRowsCap            int `env:"QUERY_MAX_ROWS_CAP" envDefault:"10000" validate:"min=1,gtefield=QueryDefaultMaxRows"`

	// Per-client read query budget; 0 disables limiting.
	QueryRatePerMinute int `env:"QUERY_RATE_PER_MINUTE" envDefault:"0" validate:"min=0"`
	QueryRateBurst     int `env:"QUERY_RATE_BURST" envDefault:"10" validate:"min=1"`

	// Optional YAML file of type definitions saved at startup.
	TypeSeedFile string `env:"TYPE_SEED_FILE" envDefault:""`
}

// SchedulerConfig controls background maintenance tasks.
type SchedulerConfig struct {
	Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`

	// IndexSweepInterval is how often every label of the graph is checked for missing indexes.
	IndexSweepInterval time.Duration `env:"INDEX_SWEEP_INTERVAL" envDefault:"15m" validate:"min=1s"`

	// IndexSweepSchedule overrides the interval with a cron expression (seconds precision) when set.
	IndexSweepSchedule string `env:"INDEX_SWEEP_SCHEDULE" envDefault:""`
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("db_host", cfg.Database.Host),
		slog.String("graph", cfg.Graph.Name),
	)

	return cfg, nil
}
