package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Claves; con AutomaticEnv cada una se lee también de la env en mayúsculas
// (port -> PORT, db_dsn -> DB_DSN, ...).
const (
	KeyPort            = "port"
	KeyDBDriver        = "db_driver"
	KeyDBDSN           = "db_dsn"
	KeyDBMigrate       = "db_migrate"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyAppName         = "app_name"
	KeyPageSize        = "page_size"
	KeyMaxPageSize     = "max_page_size"
	KeyRequestTimeout  = "request_timeout"
	KeyShutdownTimeout = "shutdown_timeout"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLitePath = "pets.db"
)

type Config struct {
	Port string

	DBDriver  string
	DBDSN     string
	DBMigrate bool

	LogLevel  string
	LogFormat string
	AppName   string

	PageSize    int
	MaxPageSize int

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyDBDriver, "")
	v.SetDefault(KeyDBDSN, "")
	v.SetDefault(KeyDBMigrate, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyAppName, "pets-api")
	v.SetDefault(KeyPageSize, 2)
	v.SetDefault(KeyMaxPageSize, 100)
	v.SetDefault(KeyRequestTimeout, "10s")
	v.SetDefault(KeyShutdownTimeout, "10s")
}

// Default devuelve la config sin env ni archivo (tests / modo dev).
func Default() Config {
	v := viper.New()
	setDefaults(v)
	c, _ := fromViper(v)
	return c
}

// Load lee defaults, luego configFile (opcional, yaml/json/toml) y por último env.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	c := Config{
		Port:            strings.TrimSpace(v.GetString(KeyPort)),
		DBDriver:        strings.ToLower(strings.TrimSpace(v.GetString(KeyDBDriver))),
		DBDSN:           strings.TrimSpace(v.GetString(KeyDBDSN)),
		DBMigrate:       v.GetBool(KeyDBMigrate),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		AppName:         v.GetString(KeyAppName),
		PageSize:        v.GetInt(KeyPageSize),
		MaxPageSize:     v.GetInt(KeyMaxPageSize),
		RequestTimeout:  v.GetDuration(KeyRequestTimeout),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}

	// Sin driver explícito: postgres si hay DSN (como antes con DB_DSN), si no memoria.
	if c.DBDriver == "" {
		if c.DBDSN != "" {
			c.DBDriver = DriverPostgres
		} else {
			c.DBDriver = DriverMemory
		}
	}
	if c.DBDriver == DriverSQLite && c.DBDSN == "" {
		c.DBDSN = defaultSQLitePath
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DBDSN == "" {
			return errors.New("config: db_dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown db_driver %q", c.DBDriver)
	}

	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if c.PageSize <= 0 || c.MaxPageSize <= 0 {
		return errors.New("config: page_size and max_page_size must be positive")
	}
	if c.PageSize > c.MaxPageSize {
		return fmt.Errorf("config: page_size (%d) exceeds max_page_size (%d)", c.PageSize, c.MaxPageSize)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: request_timeout must be positive")
	}
	return nil
}
