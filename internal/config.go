package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/corkboard/internal/render"
	"github.com/starford/corkboard/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Store  StoreConfig       `yaml:"store"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Events EventsConfig      `yaml:"events"`
	Export ExportConfig      `yaml:"export"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects where project snapshots live.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	// Path is the snapshot directory of the fs driver.
	Path     string         `yaml:"path"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig holds the redis driver settings.
type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// S3Config holds the s3 driver settings.
type S3Config struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

// PostgresConfig holds the postgres driver settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Validate validates the store configuration. An empty driver means fs.
func (c *StoreConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = storage.DriverFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(
			storage.DriverFS, storage.DriverRedis, storage.DriverS3, storage.DriverPostgres)),
		validation.Field(&c.Path, validation.When(c.Driver == storage.DriverFS, validation.Required)),
		validation.Field(&c.Redis, validation.When(c.Driver == storage.DriverRedis, validation.By(func(any) error {
			return validation.Validate(c.Redis.URL, validation.Required.Error("redis url is required"))
		}))),
		validation.Field(&c.S3, validation.When(c.Driver == storage.DriverS3, validation.By(func(any) error {
			return validation.ValidateStruct(&c.S3,
				validation.Field(&c.S3.Bucket, validation.Required),
				validation.Field(&c.S3.Region, validation.Required),
			)
		}))),
		validation.Field(&c.Postgres, validation.When(c.Driver == storage.DriverPostgres, validation.By(func(any) error {
			return validation.Validate(c.Postgres.DSN, validation.Required.Error("postgres dsn is required"))
		}))),
	)
}

// Storage converts the section to the storage package config.
func (c *StoreConfig) Storage() storage.Config {
	return storage.Config{
		Driver:      c.Driver,
		Dir:         c.Path,
		RedisURL:    c.Redis.URL,
		RedisPrefix: c.Redis.Prefix,
		S3: storage.S3Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			Prefix:          c.S3.Prefix,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			PathStyle:       c.S3.PathStyle,
		},
		PostgresDSN: c.Postgres.DSN,
	}
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// EventsConfig tunes the SSE stream.
type EventsConfig struct {
	// ViewportThrottle is the minimum gap between viewport events; the last
	// event of a burst is always delivered.
	ViewportThrottle time.Duration `yaml:"viewport_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ViewportThrottle, validation.Min(time.Duration(0)), validation.Max(5*time.Second)),
	)
}

// ExportConfig holds PNG export defaults.
type ExportConfig struct {
	Scale   float64 `yaml:"scale"`
	Padding float64 `yaml:"padding"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Scale, validation.Min(0.1), validation.Max(4.0)),
		validation.Field(&c.Padding, validation.Min(0.0), validation.Max(1000.0)),
	)
}

// Options converts the section to render options.
func (c *ExportConfig) Options() render.Options {
	return render.Options{Scale: c.Scale, Padding: c.Padding}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Driver: storage.DriverFS,
			Path:   "./boards",
		},
		SQLite: SQLiteConfig{
			Path: "./corkboard.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Events: EventsConfig{
			ViewportThrottle: 50 * time.Millisecond,
		},
		Export: ExportConfig{
			Scale:   render.DefaultOptions.Scale,
			Padding: render.DefaultOptions.Padding,
		},
	}
}
