package config

import (
	"errors"
	"strings"
	"time"

	"petpos_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	StoreDriver     string // postgres or memory
	DB              DBConfig
	MaxTxAttempts   int
	StaffSecret     []byte
	CustomerSecret  []byte
	StaffTokenTTL   time.Duration
	CustomerTTL     time.Duration
	AllowedOrigins  []string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KafkaBrokers    []string
	SalesTopic      string
	OrdersTopic     string
	TracingEnabled  bool
	JaegerEndpoint  string
	AdminUsername   string
	AdminPassword   string
	ShutdownTimeout time.Duration
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SchemaPath string
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        utils.Getenv("PORT", "8080"),
		Environment: utils.Getenv("ENVIRONMENT", "development"),
		LogLevel:    utils.Getenv("LOG_LEVEL", "info"),
		StoreDriver: strings.ToLower(utils.Getenv("STORE_DRIVER", "postgres")),
		DB: DBConfig{
			Host:       utils.Getenv("DB_HOST", "localhost"),
			Port:       utils.Getenv("DB_PORT", "5432"),
			User:       utils.Getenv("DB_USER", "petpos_user"),
			Password:   utils.Getenv("DB_PASSWORD", "petpos_password"),
			Name:       utils.Getenv("DB_NAME", "petpos_db"),
			SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
			SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
		},
		MaxTxAttempts:   utils.GetenvInt("DB_MAX_TX_ATTEMPTS", 10),
		StaffSecret:     []byte(utils.Getenv("STAFF_JWT_SECRET", "")),
		CustomerSecret:  []byte(utils.Getenv("CUSTOMER_JWT_SECRET", "")),
		StaffTokenTTL:   utils.GetenvDuration("STAFF_TOKEN_TTL", 12*time.Hour),
		CustomerTTL:     utils.GetenvDuration("CUSTOMER_TOKEN_TTL", 72*time.Hour),
		AllowedOrigins:  utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
		RedisAddr:       utils.Getenv("REDIS_ADDR", ""),
		RedisPassword:   utils.Getenv("REDIS_PASSWORD", ""),
		RedisDB:         utils.GetenvInt("REDIS_DB", 0),
		KafkaBrokers:    utils.GetenvList("KAFKA_BROKERS", nil),
		SalesTopic:      utils.Getenv("KAFKA_SALES_TOPIC", "petpos.sales"),
		OrdersTopic:     utils.Getenv("KAFKA_ORDERS_TOPIC", "petpos.online-orders"),
		TracingEnabled:  utils.GetenvBool("TRACING_ENABLED", false),
		JaegerEndpoint:  utils.Getenv("JAEGER_ENDPOINT", ""),
		AdminUsername:   utils.Getenv("ADMIN_USERNAME", ""),
		AdminPassword:   utils.Getenv("ADMIN_PASSWORD", ""),
		ShutdownTimeout: utils.GetenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	var errs []error
	if len(c.StaffSecret) == 0 {
		errs = append(errs, errors.New("STAFF_JWT_SECRET is required"))
	}
	if len(c.CustomerSecret) == 0 {
		errs = append(errs, errors.New("CUSTOMER_JWT_SECRET is required"))
	}
	if string(c.StaffSecret) != "" && string(c.StaffSecret) == string(c.CustomerSecret) {
		errs = append(errs, errors.New("staff and customer JWT secrets must differ"))
	}
	if c.StoreDriver != "postgres" && c.StoreDriver != "memory" {
		errs = append(errs, errors.New("STORE_DRIVER must be postgres or memory"))
	}
	return errors.Join(errs...)
}
