package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Store modes.
const (
	StoreModeLocal  = "local"
	StoreModeRemote = "remote"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Store  StoreConfig       `yaml:"store"`
	Remote RemoteConfig      `yaml:"remote"`
	Places PlacesConfig      `yaml:"places"`
	Cache  CacheConfig       `yaml:"cache"`
	Access AccessConfig      `yaml:"access"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Store.Mode == StoreModeRemote {
		if err := c.Remote.Validate(); err != nil {
			return err
		}
	}
	if err := c.Places.Validate(); err != nil {
		return err
	}
	if err := c.Access.Validate(); err != nil {
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

// StoreConfig selects the persistence backend and the local snapshot path.
//
// Mode controls where records live:
//   - "local" (default): in-memory map backed by a JSON snapshot file.
//   - "remote": a PostgREST-compatible HTTP table; Remote must be configured.
type StoreConfig struct {
	Mode     string         `yaml:"mode"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// SnapshotConfig holds the local snapshot file path.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = StoreModeLocal
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(StoreModeLocal, StoreModeRemote)),
	); err != nil {
		return err
	}
	if c.Mode == StoreModeLocal && c.Snapshot.Path == "" {
		return fmt.Errorf("store: mode is %q but snapshot.path is empty", StoreModeLocal)
	}
	return nil
}

// RemoteConfig holds the remote table backend connection settings.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Table   string `yaml:"table"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.APIKey, validation.Required),
	)
}

// PlacesConfig holds the external place provider settings. Leaving BaseURL
// empty disables provider-backed search; saved records still work.
type PlacesConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Validate validates the places configuration.
func (c *PlacesConfig) Validate() error {
	if c.BaseURL == "" {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
	)
}

// Enabled reports whether a place provider is configured.
func (c *PlacesConfig) Enabled() bool {
	return c.BaseURL != ""
}

// CacheConfig holds the SQLite cache database path for provider lookups.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// AccessConfig holds the static region access-code table.
type AccessConfig struct {
	Codes map[string]string `yaml:"codes"`
}

// Validate validates the access configuration. Codes are 5 characters each.
func (c *AccessConfig) Validate() error {
	for region, code := range c.Codes {
		if len(code) != 5 {
			return fmt.Errorf("access: code for region %q must be 5 characters", region)
		}
	}
	return nil
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
	// Normalise empty mode to "disabled" for backward compatibility.
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
			Mode: StoreModeLocal,
			Snapshot: SnapshotConfig{
				Path: "./data/locations.json",
			},
		},
		Cache: CacheConfig{
			Path: "./raido.db",
		},
		Access: AccessConfig{
			Codes: map[string]string{},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
