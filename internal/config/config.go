package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Salesdash"`
		Port int    `envconfig:"PORT" default:"5000"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"salesdash"`
	}

	Store struct {
		// Backend selects the transaction store: "postgres" or "mongo".
		Backend string `envconfig:"STORE_BACKEND" default:"postgres"`
	}

	Mongo struct {
		URI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
		Database   string `envconfig:"MONGO_DATABASE" default:"salesdash"`
		Collection string `envconfig:"MONGO_COLLECTION" default:"products"`
	}

	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB" default:"0"`
		TTL      time.Duration `envconfig:"CACHE_TTL" default:"1m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Chart struct {
		Scheme string `envconfig:"CHART_SCHEME" default:"hundreds"`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
		JSON  bool   `envconfig:"LOG_JSON" default:"false"`
	}

	Seed struct {
		Source string `envconfig:"SEED_SOURCE" default:"https://s3.amazonaws.com/roxiler.com/product_transaction.json"`
	}

	Dashboard struct {
		APIURL string `envconfig:"API_URL" default:"http://localhost:5000"`
	}
}

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendPostgres, BackendMongo:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return &cfg, nil
}
