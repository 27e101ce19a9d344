// Package config holds the connection and idle-reaper settings consumed by
// the handle manager.
//
// Settings are normally built in code starting from Default. Load reads the
// same structure from a YAML file; the password may instead come from the
// SQLHANDLE_PASSWORD environment variable so it stays out of the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

// Supported driver names, as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverDuckDB   = "duckdb"
)

// PasswordEnv overrides Password after Load when set.
const PasswordEnv = "SQLHANDLE_PASSWORD"

// Config is the per-process connection configuration.
type Config struct {
	// Driver is the database/sql driver name. Default: postgres.
	Driver string `yaml:"driver"`

	// Host is the server host. Ignored by the embedded drivers.
	Host string `yaml:"host"`

	// Port is the server port. Zero means the driver default.
	Port int `yaml:"port"`

	// Database is the database name, or the file path for sqlite3 and
	// duckdb.
	Database string `yaml:"database"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// SSLMode is passed through to lib/pq. Default: disable.
	SSLMode string `yaml:"sslmode"`

	// DSN, when set, is used verbatim instead of the fields above. A
	// postgres:// URL is converted to keyword/value form.
	DSN string `yaml:"dsn"`

	// AutoCloserEnabled turns on the idle reaper.
	AutoCloserEnabled bool `yaml:"auto_closer_enabled"`

	// AutoCloserMinutes is how long a handle may stay open before the
	// reaper force-closes it. Default: 10.
	AutoCloserMinutes int `yaml:"auto_closer_minutes"`
}

// Default returns a Config for a local PostgreSQL server with the reaper
// disabled.
func Default() Config {
	return Config{
		Driver:            DriverPostgres,
		Host:              "localhost",
		Port:              5432,
		SSLMode:           "disable",
		AutoCloserMinutes: 10,
	}
}

// Load reads a YAML config file over Default and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if password := os.Getenv(PasswordEnv); password != "" {
		cfg.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the connection string and reaper depend on.
func (c Config) Validate() error {
	var errs []error
	switch c.Driver {
	case DriverPostgres, DriverSQLite, DriverDuckDB:
	case "":
		errs = append(errs, errors.New("driver is required"))
	default:
		errs = append(errs, fmt.Errorf("unsupported driver %q", c.Driver))
	}
	if c.DSN == "" && c.Database == "" && c.Driver != DriverDuckDB {
		errs = append(errs, errors.New("database is required"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.AutoCloserEnabled && c.AutoCloserMinutes <= 0 {
		errs = append(errs, errors.New("auto_closer_minutes must be positive when auto_closer_enabled is set"))
	}
	return errors.Join(errs...)
}

// ConnectionString builds the driver-specific data source name.
func (c Config) ConnectionString() (string, error) {
	if c.DSN != "" {
		if c.Driver == DriverPostgres && (strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://")) {
			converted, err := pq.ParseURL(c.DSN)
			if err != nil {
				return "", fmt.Errorf("parsing dsn: %w", err)
			}
			return converted, nil
		}
		return c.DSN, nil
	}

	switch c.Driver {
	case DriverSQLite, DriverDuckDB:
		return c.Database, nil
	case DriverPostgres:
		params := map[string]string{
			"host":     c.Host,
			"dbname":   c.Database,
			"user":     c.Username,
			"password": c.Password,
			"sslmode":  c.SSLMode,
		}
		if c.Port > 0 {
			params["port"] = strconv.Itoa(c.Port)
		}
		return keywordString(params), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

// keywordString renders lib/pq keyword/value pairs, skipping empty values
// and quoting values that contain spaces, quotes or backslashes.
func keywordString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + quoteValue(params[k])
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
