package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Defaults applied before the file and environment are read.
const (
	DefaultPort     = 8080
	DefaultBackend  = BackendFile
	DefaultDataDir  = "./data"
	DefaultLogLevel = "info"
	DefaultSSLMode  = "disable"
	DefaultPGPort   = 5432
)

// Config is the service configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Storage struct {
	Backend  string   `yaml:"backend"`
	Dir      string   `yaml:"dir"`
	Postgres Postgres `yaml:"postgres"`
}

// Postgres holds connection details for the postgres backend.
type Postgres struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: Server{Port: DefaultPort},
		Storage: Storage{
			Backend:  DefaultBackend,
			Dir:      DefaultDataDir,
			Postgres: Postgres{Port: DefaultPGPort, SSLMode: DefaultSSLMode},
		},
		Log: Log{Level: DefaultLogLevel},
	}
}

// Parse reads YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}

// LoadFromReader parses a configuration from r.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}
	return Parse(data)
}

// Load reads path (a missing file yields the defaults), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if cfg, err = Parse(data); err != nil {
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. The DB_* and PORT names
// match what deployments of the service already export.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	str("DASHBOARD_STORAGE", &c.Storage.Backend)
	str("DASHBOARD_DATA_DIR", &c.Storage.Dir)
	str("LOG_LEVEL", &c.Log.Level)

	pg := &c.Storage.Postgres
	str("DB_HOST", &pg.Host)
	if err := num("DB_PORT", &pg.Port); err != nil {
		return err
	}
	str("DB_USER", &pg.User)
	str("DB_PASSWORD", &pg.Password)
	str("DB_NAME", &pg.Name)
	str("DB_SSLMODE", &pg.SSLMode)
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case BackendPostgres:
		pg := c.Storage.Postgres
		if pg.Host == "" || pg.User == "" || pg.Name == "" {
			return errors.New("postgres backend requires host, user and name (DB_HOST, DB_USER, DB_NAME)")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// ToYAML renders the configuration, e.g. for `config show`.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
