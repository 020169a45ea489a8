package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/remote"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Session modes as written in configuration.
const (
	SessionModeLocal         = "local"
	SessionModeGuest         = "guest"
	SessionModeAuthenticated = "authenticated"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Cache   CacheConfig       `yaml:"cache"`
	Session SessionConfig     `yaml:"session"`
	Remote  RemoteConfig      `yaml:"remote"`
	Auth    AuthConfig        `yaml:"auth"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// CacheConfig locates the local document cache.
type CacheConfig struct {
	Dir         string `yaml:"dir"`
	DocumentKey string `yaml:"document_key"`
	QuotaBytes  int64  `yaml:"quota_bytes"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.DocumentKey == "" {
		c.DocumentKey = persist.DefaultKey
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.QuotaBytes, validation.Min(int64(0))),
	)
}

// SessionConfig describes who is signed in.
type SessionConfig struct {
	Mode   string `yaml:"mode"`
	UserID string `yaml:"user_id"`
	Email  string `yaml:"email"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = SessionModeLocal
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required,
			validation.In(SessionModeLocal, SessionModeGuest, SessionModeAuthenticated)),
		validation.Field(&c.UserID, validation.When(c.Mode == SessionModeAuthenticated, validation.Required)),
	)
}

// Session converts the configuration into a persistence session.
func (c *SessionConfig) Session() (persist.Session, error) {
	mode, err := persist.ParseMode(c.Mode)
	if err != nil {
		return persist.Session{}, err
	}
	return persist.Session{Mode: mode, UserID: c.UserID, Email: c.Email}, nil
}

// RemoteConfig selects the remote document and share backend.
type RemoteConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`
	RedisURL    string `yaml:"redis_url"`
	KeyPrefix   string `yaml:"key_prefix"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = remote.DriverNone
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(remote.DriverNone, remote.DriverSQLite, remote.DriverPostgres, remote.DriverRedis)),
		validation.Field(&c.SQLitePath, validation.When(c.Driver == remote.DriverSQLite, validation.Required)),
		validation.Field(&c.PostgresURL, validation.When(c.Driver == remote.DriverPostgres, validation.Required)),
		validation.Field(&c.RedisURL, validation.When(c.Driver == remote.DriverRedis, validation.Required)),
	)
}

// Backend returns the options for remote.Open.
func (c *RemoteConfig) Backend() remote.Config {
	return remote.Config{
		Driver:      c.Driver,
		SQLitePath:  c.SQLitePath,
		PostgresURL: c.PostgresURL,
		RedisURL:    c.RedisURL,
		KeyPrefix:   c.KeyPrefix,
	}
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
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

// WatchConfig toggles reloading when another process rewrites the cache.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
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
		Cache: CacheConfig{
			Dir:         "./data",
			DocumentKey: persist.DefaultKey,
		},
		Session: SessionConfig{
			Mode: SessionModeLocal,
		},
		Remote: RemoteConfig{
			Driver:    remote.DriverNone,
			KeyPrefix: remote.DefaultKeyPrefix,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
	}
}
