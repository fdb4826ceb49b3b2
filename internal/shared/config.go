package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

var validate = newValidator()

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Database    DatabaseConfig    `toml:"database"`
	Assets      AssetsConfig      `toml:"assets"`
	Server      ServerConfig      `toml:"server"`
	Schedule    ScheduleConfig    `toml:"schedule"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify client credentials used for the client-credentials grant.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" validate:"required"`
	ClientSecret string `toml:"client_secret" validate:"required"`
}

// CatalogConfig controls which part of the catalog is ingested and where it is fetched from.
type CatalogConfig struct {
	SeedArtistID   string `toml:"seed_artist_id" validate:"required"`
	Market         string `toml:"market" validate:"required,len=2"`
	APIURL         string `toml:"api_url" validate:"required,url"`
	TokenURL       string `toml:"token_url" validate:"required,url"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
}

// Timeout is the transport-level timeout applied to catalog, token and asset requests.
//
// Zero means no timeout.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver" validate:"oneof=sqlite postgres"`
	Path         string `toml:"path" validate:"required_if=Driver sqlite"`
	URL          string `toml:"url" validate:"required_if=Driver postgres"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
}

// AssetsConfig selects the blob store that downloaded images are written to.
type AssetsConfig struct {
	Backend          string `toml:"backend" validate:"oneof=file s3 gcs azure"`
	Dir              string `toml:"dir" validate:"required_if=Backend file"`
	Bucket           string `toml:"bucket" validate:"required_if=Backend s3,required_if=Backend gcs"`
	Prefix           string `toml:"prefix"`
	Region           string `toml:"region"`
	Endpoint         string `toml:"endpoint" validate:"omitempty,url"`
	ConnectionString string `toml:"connection_string" validate:"required_if=Backend azure"`
	Container        string `toml:"container" validate:"required_if=Backend azure"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
}

// Addr joins host and port into a listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScheduleConfig holds the optional cron expression for scheduled runs.
type ScheduleConfig struct {
	Cron string `toml:"cron"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	return saveConfig(path, config, func(f *os.File) error { return f.Close() })
}

func saveConfig(path string, config *Config, closeFile func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := closeFile(f); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides the Spotify credentials with SPOTIFY_ID and SPOTIFY_SECRET when they are set.
func (c *Config) ApplyEnv() {
	if id := os.Getenv("SPOTIFY_ID"); id != "" {
		c.Credentials.Spotify.ClientID = id
	}
	if secret := os.Getenv("SPOTIFY_SECRET"); secret != "" {
		c.Credentials.Spotify.ClientSecret = secret
	}
}

// SetCredentials trims and stores a client id and secret, rejecting blank values.
func (c *Config) SetCredentials(clientID, clientSecret string) error {
	clientID, clientSecret = strings.TrimSpace(clientID), strings.TrimSpace(clientSecret)
	if clientID == "" {
		return fmt.Errorf("%w: client_id is required", ErrMissingCredentials)
	}
	if clientSecret == "" {
		return fmt.Errorf("%w: client_secret is required", ErrMissingCredentials)
	}
	c.Credentials.Spotify.ClientID = clientID
	c.Credentials.Spotify.ClientSecret = clientSecret
	return nil
}

// Validate checks the configuration before a run.
//
// Blank credentials are reported as [ErrMissingCredentials]; every other problem as [ErrInvalidConfig].
func (c *Config) Validate() error {
	c.Credentials.Spotify.ClientID = strings.TrimSpace(c.Credentials.Spotify.ClientID)
	c.Credentials.Spotify.ClientSecret = strings.TrimSpace(c.Credentials.Spotify.ClientSecret)

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, fe := range verrs {
		if strings.HasPrefix(fe.StructNamespace(), "Config.Credentials.") {
			return fmt.Errorf("%w: %s is required", ErrMissingCredentials, fe.Field())
		}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
}
