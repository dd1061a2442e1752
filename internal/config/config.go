package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverFirebase = "firebase"
	DriverPostgres = "postgres"
	DriverMinio    = "minio"
	DriverLocal    = "local"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Listing    Listing    `yaml:"listing"`
	Store      Store      `yaml:"store"`
	Blob       Blob       `yaml:"blob"`
	Auth       Auth       `yaml:"auth"`
	Firebase   Firebase   `yaml:"firebase"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	Minio      Minio      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	ES         ES         `yaml:"elasticsearch"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	CORS       CORS       `yaml:"cors"`
	Worker     Worker     `yaml:"worker"`
	Summarizer Summarizer `yaml:"summarizer"`
	Tracing    Tracing    `yaml:"tracing"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// MaxUploadSize bounds multipart bodies for course, lesson and profile uploads.
	MaxUploadSize int64 `yaml:"max_upload_size" env-default:"33554432"`
}

type Listing struct {
	PageSize      int           `yaml:"page_size" env-default:"8"`
	RecentCount   int           `yaml:"recent_count" env-default:"4"`
	LookupTimeout time.Duration `yaml:"lookup_timeout" env-default:"3s"`
	// Concurrency caps in-flight enrichment lookups per page.
	Concurrency int    `yaml:"concurrency" env-default:"16"`
	CoverPath   string `yaml:"cover_path" env-default:"courses/%s/cover.jpg"`
}

type Store struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"memory"`
}

type Blob struct {
	Driver   string        `yaml:"driver" env:"BLOB_DRIVER" env-default:"minio"`
	URLTTL   time.Duration `yaml:"url_ttl" env-default:"1h"`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"10m"`
}

type Auth struct {
	Driver string `yaml:"driver" env:"AUTH_DRIVER" env-default:"local"`
}

type Firebase struct {
	CredentialsPath string `yaml:"credentials_path" env:"FIREBASE_CREDENTIALS_PATH"`
	ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	DatabaseURL     string `yaml:"database_url" env:"FIREBASE_DATABASE_URL"`
	StorageBucket   string `yaml:"storage_bucket" env:"FIREBASE_STORAGE_BUCKET"`
	// APIKey enables password sign-in through the Identity Toolkit REST API.
	APIKey string `yaml:"api_key" env:"FIREBASE_API_KEY"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
}

type JWT struct {
	SecretKey  string        `yaml:"secret_key" env:"JWT_SECRET"`
	Issuer     string        `yaml:"issuer" env-default:"itec-web"`
	AccessTTL  time.Duration `yaml:"access_token_ttl" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_token_ttl" env-default:"720h"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket" env-default:"courses"`
}

type Redis struct {
	// Addr enables the download URL cache when set.
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type ES struct {
	Hosts    []string `yaml:"hosts" env:"ELASTICSEARCH_HOSTS" env-separator:","`
	Index    string   `yaml:"index" env-default:"courses"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password" env:"ELASTICSEARCH_PASSWORD"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"20"`
	Burst int     `yaml:"burst" env-default:"40"`
}

type CORS struct {
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

type Worker struct {
	Schedule string        `yaml:"schedule" env-default:"*/5 * * * * *"`
	Timeout  time.Duration `yaml:"timeout" env-default:"2m"`
}

type Summarizer struct {
	BaseURL string `yaml:"base_url" env-default:"https://api.openai.com/v1"`
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model   string `yaml:"model" env-default:"gpt-4"`
}

// Tracing exports OpenTelemetry spans over OTLP/HTTP, or to stdout when no
// endpoint is set.
type Tracing struct {
	Enabled     bool    `yaml:"enabled" env:"OTEL_ENABLED"`
	ServiceName string  `yaml:"service_name" env-default:"itec-web"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLER_RATIO" env-default:"0.1"`
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load reads the YAML file named by CONFIG_PATH after importing a .env file
// from the working directory, when one exists. Environment variables override
// the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFirebase, DriverPostgres:
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	switch c.Blob.Driver {
	case DriverMinio, DriverFirebase, DriverMemory:
	default:
		return fmt.Errorf("blob.driver: unknown driver %q", c.Blob.Driver)
	}
	switch c.Auth.Driver {
	case DriverLocal:
		if c.JWT.SecretKey == "" {
			return errors.New("jwt.secret_key is required for the local auth driver")
		}
	case DriverFirebase:
	default:
		return fmt.Errorf("auth.driver: unknown driver %q", c.Auth.Driver)
	}

	usesFirebase := c.Store.Driver == DriverFirebase || c.Blob.Driver == DriverFirebase || c.Auth.Driver == DriverFirebase
	if usesFirebase && c.Firebase.CredentialsPath == "" {
		return errors.New("firebase.credentials_path is required by the firebase drivers")
	}
	if c.Store.Driver == DriverFirebase && c.Firebase.DatabaseURL == "" {
		return errors.New("firebase.database_url is required by the firebase store driver")
	}
	if c.Blob.Driver == DriverFirebase && c.Firebase.StorageBucket == "" {
		return errors.New("firebase.storage_bucket is required by the firebase blob driver")
	}
	if c.Listing.PageSize < 1 {
		return errors.New("listing.page_size must be positive")
	}
	return nil
}
