package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	Database        string        `yaml:"database"`
	LogLevel        string        `yaml:"logLevel"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `yaml:"connMaxIdleTime"`
}

type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	Database     int    `yaml:"database"`
	PoolSize     int    `yaml:"poolSize"`
	MinIdleConns int    `yaml:"minIdleConns"`
}

type RabbitMQConfig struct {
	URL          string `yaml:"url"`
	Exchange     string `yaml:"exchange"`
	PaymentQueue string `yaml:"paymentQueue"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Auth     AuthConfig     `yaml:"auth"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:5000"},
		},
		Database: DatabaseConfig{
			Driver:          DriverMySQL,
			Host:            "localhost",
			Port:            "3306",
			LogLevel:        "warn",
			MaxOpenConns:    100,
			MaxIdleConns:    20,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: time.Minute,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			PoolSize:     50,
			MinIdleConns: 5,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange:     "order.exchange",
			PaymentQueue: "checkout.payment.confirmed",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
	}
}

// LoadDotEnv loads .env style files into the environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("config: load %s: %v", f, err)
		}
	}
}

// Load reads the YAML file at filename on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(filename string) (Config, error) {
	cfg := Default()

	if filename != "" {
		file, err := os.Open(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("config: %s not found, using defaults and environment", filename)
		case err != nil:
			return cfg, err
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
				return cfg, fmt.Errorf("decode %s: %w", filename, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitCSV(origins)
	}

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Database.Username, "MYSQL_USER")
	setString(&c.Database.Password, "MYSQL_PASSWORD")
	setString(&c.Database.Host, "MYSQL_HOST")
	setString(&c.Database.Port, "MYSQL_PORT")
	setString(&c.Database.Database, "MYSQL_DATABASE")

	if host := os.Getenv("REDIS_HOST"); host != "" {
		c.Redis.Addr = host + ":6379"
	}
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.RabbitMQ.Exchange, "RABBITMQ_EXCHANGE")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	if n := os.Getenv("DB_MAX_OPEN_CONNS"); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
		}
		c.Database.MaxOpenConns = v
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret (JWT_SECRET) is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTTL must be positive")
	}
	return nil
}

// DataSourceName returns the explicit DSN when set, otherwise builds one for the driver.
// MySQL DSNs always carry clientFoundRows.
func (d DatabaseConfig) DataSourceName() string {
	if d.DSN != "" {
		if d.Driver == DriverMySQL {
			return withClientFoundRows(d.DSN)
		}
		return d.DSN
	}
	if d.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.Username, d.Password, d.Database)
	}
	// clientFoundRows makes RowsAffected count matched rows, not changed rows.
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

// withClientFoundRows turns on clientFoundRows in a MySQL DSN. A DSN that does
// not parse is returned as is so the driver reports the error on open.
func withClientFoundRows(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil || cfg.ClientFoundRows {
		return dsn
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
