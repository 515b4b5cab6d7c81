package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Bounds on a single MySQL connection. A server that accepts TCP but never
// answers must not stall startup or a request.
const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 30 * time.Second
)

type Config struct {
	Host string
	Port uint16

	// Mock selects the mock data source; DB settings are ignored.
	Mock bool

	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBDatabase       string
	DBMaxConns       int
	DBAcquireTimeout time.Duration

	LogLevel string

	RedisAddr       string
	RedisDB         int
	RateLimit       int
	RateLimitWindow time.Duration
}

// rawEnv mirrors the environment before parsing. A nil pointer means the
// variable is absent; an empty value is still "present".
type rawEnv struct {
	Host *string `env:"HOST" validate:"required"`
	Port *string `env:"PORT" validate:"required"`
	Mock bool

	DBDriver   string  `env:"DB_DRIVER" validate:"oneof=mysql sqlite"`
	DBHost     *string `env:"DB_HOST" validate:"required_if=Mock false DBDriver mysql"`
	DBUser     *string `env:"DB_USER" validate:"required_if=Mock false DBDriver mysql"`
	DBPassword *string `env:"DB_PASSWORD" validate:"required_if=Mock false DBDriver mysql"`
	DBDatabase *string `env:"DB_DATABASE" validate:"required_unless=Mock true"`

	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error off"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report env var names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

func lookup(k string) *string {
	if v, ok := os.LookupEnv(k); ok {
		return &v
	}
	return nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Load reads the process environment. Any missing or malformed variable is
// reported; callers are expected to exit before binding the listener.
func Load() (*Config, error) {
	raw := rawEnv{
		Host:       lookup("HOST"),
		Port:       lookup("PORT"),
		Mock:       os.Getenv("MOCK") == "1",
		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		DBHost:     lookup("DB_HOST"),
		DBUser:     lookup("DB_USER"),
		DBPassword: lookup("DB_PASSWORD"),
		DBDatabase: lookup("DB_DATABASE"),
		LogLevel:   strings.ToLower(getenv("LOG_LEVEL", "info")),
	}
	if err := validate.Struct(raw); err != nil {
		return nil, describe(err)
	}

	port, err := strconv.ParseUint(*raw.Port, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to parse value of PORT: %q", *raw.Port)
	}

	c := &Config{
		Host:       *raw.Host,
		Port:       uint16(port),
		Mock:       raw.Mock,
		DBDriver:   raw.DBDriver,
		DBHost:     deref(raw.DBHost),
		DBPort:     getenv("DB_PORT", "3306"),
		DBUser:     deref(raw.DBUser),
		DBPassword: deref(raw.DBPassword),
		DBDatabase: deref(raw.DBDatabase),
		LogLevel:   raw.LogLevel,
		RedisAddr:  os.Getenv("REDIS_ADDR"),
	}

	var errs []error
	c.DBMaxConns = envInt("DB_MAX_CONNS", 4, &errs)
	c.DBAcquireTimeout = envDur("DB_ACQUIRE_TIMEOUT", 30*time.Second, &errs)
	c.RedisDB = envInt("REDIS_DB", 0, &errs)
	c.RateLimit = envInt("RATE_LIMIT", 60, &errs)
	c.RateLimitWindow = envDur("RATE_LIMIT_WINDOW", time.Minute, &errs)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.DBMaxConns < 1 {
		return fmt.Errorf("invalid DB_MAX_CONNS %d: must be at least 1", c.DBMaxConns)
	}
	if c.DBAcquireTimeout <= 0 {
		return errors.New("invalid DB_ACQUIRE_TIMEOUT: must be positive")
	}
	if c.RedisAddr != "" {
		if c.RateLimit < 1 {
			return fmt.Errorf("invalid RATE_LIMIT %d: must be at least 1", c.RateLimit)
		}
		if c.RateLimitWindow < time.Second {
			return fmt.Errorf("invalid RATE_LIMIT_WINDOW %s: must be at least 1s", c.RateLimitWindow)
		}
	}
	if c.DBDriver == DriverMySQL && !c.Mock {
		if _, err := net.LookupPort("tcp", c.DBPort); err != nil {
			return fmt.Errorf("invalid DB_PORT %q: %w", c.DBPort, err)
		}
	}
	return nil
}

// Addr is the listener address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// MySQLDSN builds the driver DSN; parseTime is needed for DATETIME columns.
func (c *Config) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	mc.DBName = c.DBDatabase
	mc.ParseTime = true
	mc.Timeout = dialTimeout
	mc.ReadTimeout = ioTimeout
	mc.WriteTimeout = ioTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func describe(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	errs := make([]error, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required", "required_if", "required_unless":
			errs = append(errs, fmt.Errorf("%s not found in environment", fe.Field()))
		case "oneof":
			errs = append(errs, fmt.Errorf("invalid %s %q: must be one of [%s]", fe.Field(), fe.Value(), fe.Param()))
		default:
			errs = append(errs, fmt.Errorf("invalid %s: %s validation failed", fe.Field(), fe.Tag()))
		}
	}
	return errors.Join(errs...)
}

func envInt(k string, d int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid int for %s: %q", k, v))
		return d
	}
	return n
}

func envDur(k string, d time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid duration for %s: %q", k, v))
		return d
	}
	return dur
}
