// Package config handles application configuration. Runtime settings come
// from environment variables; the federated-identity client id comes from a
// local client secrets file whose absence is a fatal startup error.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration values.
type Config struct {
	Host string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"APP_PORT" envDefault:"8080"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	Database Database `envPrefix:"POSTGRES_"`
	Valkey   Valkey   `envPrefix:"VALKEY_"`
	Assets   Assets   `envPrefix:"ASSETS_"`

	// ClientSecretsFile points at the JSON file holding the external
	// identity provider's client id.
	ClientSecretsFile string `env:"CLIENT_SECRETS_FILE" envDefault:"client_secrets.json"`

	// ClientID is filled from ClientSecretsFile, not the environment.
	ClientID string `env:"-"`
}

// Database contains PostgreSQL connection parameters.
type Database struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"curio"`
	Password string `env:"PASSWORD" envDefault:"changeme"`
	Name     string `env:"DB" envDefault:"curio"`
}

// Valkey contains session-store connection parameters.
type Valkey struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
}

// Assets selects and configures the image-asset backend.
type Assets struct {
	// Backend is "disk" or "s3".
	Backend string `env:"BACKEND" envDefault:"disk"`

	// Root is the upload directory for the disk backend.
	Root string `env:"ROOT" envDefault:"uploads"`

	// S3 settings, used only when Backend is "s3".
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
}

// clientSecrets mirrors the provider's downloadable credentials file.
type clientSecrets struct {
	Web struct {
		ClientID string `json:"client_id"`
	} `json:"web"`
}

// Load reads configuration from environment variables and the client
// secrets file. A missing or unreadable secrets file is an error: the
// server cannot verify login tokens without a client id.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	raw, err := os.ReadFile(cfg.ClientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets %s: %w", cfg.ClientSecretsFile, err)
	}

	var secrets clientSecrets
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return nil, fmt.Errorf("parse client secrets %s: %w", cfg.ClientSecretsFile, err)
	}
	if secrets.Web.ClientID == "" {
		return nil, fmt.Errorf("client secrets %s: empty client_id", cfg.ClientSecretsFile)
	}
	cfg.ClientID = secrets.Web.ClientID

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
