// Package config loads finadmin settings from ~/.finadmin/config.toml and
// FINADMIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	DirName    = ".finadmin"
	configName = "config"
	configType = "toml"
	FileName   = configName + "." + configType
	LogName    = "finadmin.log"
	EnvPrefix  = "FINADMIN"

	dirMode  = 0o700
	fileMode = 0o600

	tempFilePattern = ".config-*.toml.tmp"
)

// Setting keys. Each one is also read from FINADMIN_<KEY>.
const (
	KeyAPIURL          = "api_url"
	KeyWebURL          = "web_url"
	KeyLogLevel        = "log_level"
	KeyLogFile         = "log_file"
	KeyRefreshInterval = "refresh_interval"
	KeyStaleTime       = "stale_time"
	KeyHTTPTimeout     = "http_timeout"
	KeyDays            = "days"
	KeyToken           = "token"
)

// Defaults.
const (
	DefaultAPIURL          = "http://localhost:8000"
	DefaultWebURL          = "http://localhost:5173"
	DefaultLogLevel        = "info"
	DefaultRefreshInterval = 60 * time.Second
	DefaultStaleTime       = 30 * time.Second
	DefaultDays            = 30
)

// ErrExists is returned by Init when a config file is already present.
var ErrExists = errors.New("config file already exists")

// Config is the resolved configuration.
type Config struct {
	Dir             string
	APIURL          string
	WebURL          string
	LogLevel        zerolog.Level
	LogFile         string
	RefreshInterval time.Duration
	StaleTime       time.Duration
	// HTTPTimeout of zero leaves the transport default in place.
	HTTPTimeout time.Duration
	Days        int
	// Token is the FINADMIN_TOKEN override. It is never persisted.
	Token string
}

// fileSchema is the on-disk shape written by Init.
type fileSchema struct {
	APIURL          string `toml:"api_url"`
	WebURL          string `toml:"web_url"`
	LogLevel        string `toml:"log_level"`
	RefreshInterval string `toml:"refresh_interval"`
	StaleTime       string `toml:"stale_time"`
	HTTPTimeout     string `toml:"http_timeout"`
	Days            int    `toml:"days"`
}

// DefaultDir returns ~/.finadmin.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Load reads <dir>/config.toml if present, then the environment. An empty
// dir means DefaultDir. A nil v gets a fresh viper instance.
func Load(v *viper.Viper, dir string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyWebURL, DefaultWebURL)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFile, filepath.Join(dir, LogName))
	v.SetDefault(KeyRefreshInterval, DefaultRefreshInterval)
	v.SetDefault(KeyStaleTime, DefaultStaleTime)
	v.SetDefault(KeyHTTPTimeout, time.Duration(0))
	v.SetDefault(KeyDays, DefaultDays)
	if err := v.BindEnv(KeyToken); err != nil {
		return nil, fmt.Errorf("bind token env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", KeyLogLevel, err)
	}

	cfg := &Config{
		Dir:             dir,
		APIURL:          strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/"),
		WebURL:          strings.TrimSpace(v.GetString(KeyWebURL)),
		LogLevel:        level,
		LogFile:         v.GetString(KeyLogFile),
		RefreshInterval: v.GetDuration(KeyRefreshInterval),
		StaleTime:       v.GetDuration(KeyStaleTime),
		HTTPTimeout:     v.GetDuration(KeyHTTPTimeout),
		Days:            v.GetInt(KeyDays),
		Token:           strings.TrimSpace(v.GetString(KeyToken)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config %s: %q is not an http(s) URL", KeyAPIURL, c.APIURL)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("config %s: must be positive, got %s", KeyRefreshInterval, c.RefreshInterval)
	}
	if c.StaleTime < 0 {
		return fmt.Errorf("config %s: must not be negative, got %s", KeyStaleTime, c.StaleTime)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config %s: must not be negative, got %s", KeyHTTPTimeout, c.HTTPTimeout)
	}
	if c.Days < 1 {
		return fmt.Errorf("config %s: must be at least 1, got %d", KeyDays, c.Days)
	}
	return nil
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Init writes a config file with the default values into dir. It refuses
// to overwrite an existing file unless force is set.
func Init(dir string, force bool) (string, error) {
	path := Path(dir)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	schema := fileSchema{
		APIURL:          DefaultAPIURL,
		WebURL:          DefaultWebURL,
		LogLevel:        DefaultLogLevel,
		RefreshInterval: DefaultRefreshInterval.String(),
		StaleTime:       DefaultStaleTime.String(),
		HTTPTimeout:     "0s",
		Days:            DefaultDays,
	}
	if err := write(path, schema); err != nil {
		return path, err
	}
	return path, nil
}

func write(path string, schema fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false
	return nil
}
