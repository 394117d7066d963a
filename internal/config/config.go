package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	Env      string `envconfig:"ENV" default:"dev"`

	// DB
	DBHost            string `envconfig:"DB_HOST" default:"postgres"`
	DBPort            int    `envconfig:"DB_PORT" default:"5432"`
	DBUser            string `envconfig:"DB_USER" default:"portgate"`
	DBPassword        string `envconfig:"DB_PASSWORD" default:"portgate"`
	DBName            string `envconfig:"DB_NAME" default:"portgate_db"`
	DBSSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	DBTimeZone        string `envconfig:"DB_TIMEZONE" default:"UTC"`
	DBMaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifeMin  int    `envconfig:"DB_CONN_MAX_LIFETIME_MIN" default:"30"`

	// Identity
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Real-time push; empty URL selects the console notifier.
	RabbitURL      string `envconfig:"RABBIT_URL"`
	RabbitExchange string `envconfig:"RABBIT_EXCHANGE" default:"portgate.events"`

	// Notarization ledger; empty endpoint selects the no-op notary.
	NotaryEndpoint   string `envconfig:"NOTARY_ENDPOINT"`
	NotaryTimeoutSec int    `envconfig:"NOTARY_TIMEOUT_SEC" default:"10"`

	// Tracing; empty endpoint disables the exporter.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, err
	}
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return App{}, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}
	return c, nil
}

// DSN builds the postgres connection string.
func (c App) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}
