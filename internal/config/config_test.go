package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
database:
  driver: postgres
  host: db.internal
  port: "5432"
  username: shop
  password: secret
  database: shop
  connMaxLifetime: 10m
redis:
  addr: cache:6379
auth:
  jwtSecret: from-file
  tokenTTL: 2h
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxIdleTime, "unset keys keep defaults")
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "order.exchange", cfg.RabbitMQ.Exchange)
	assert.Equal(t,
		"host=db.internal port=5432 user=shop password=secret dbname=shop sslmode=disable",
		cfg.Database.DataSourceName())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MYSQL_USER", "root")
	t.Setenv("MYSQL_PASSWORD", "pw")
	t.Setenv("MYSQL_HOST", "mysql")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_DATABASE", "orders")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t,
		"root:pw@tcp(mysql:3307)/orders?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		cfg.Database.DataSourceName())
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(writeConfig(t, "database:\n  driver: oracle\nauth:\n  jwtSecret: x\n"))
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = Load(writeConfig(t, "server:\n  port: \"1\"\n"))
	assert.ErrorContains(t, err, "jwtSecret")

	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TOKEN_TTL", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "TOKEN_TTL")
}

func TestDataSourceName_ExplicitDSN(t *testing.T) {
	t.Run("mysql gains clientFoundRows", func(t *testing.T) {
		d := DatabaseConfig{Driver: DriverMySQL, DSN: "shop:pw@tcp(db:3306)/orders?parseTime=true"}

		parsed, err := mysql.ParseDSN(d.DataSourceName())
		require.NoError(t, err)
		assert.True(t, parsed.ClientFoundRows)
		assert.True(t, parsed.ParseTime)
		assert.Equal(t, "orders", parsed.DBName)
		assert.Equal(t, "db:3306", parsed.Addr)
	})

	t.Run("mysql already set", func(t *testing.T) {
		dsn := "user@/db?clientFoundRows=true"
		d := DatabaseConfig{Driver: DriverMySQL, DSN: dsn}
		assert.Equal(t, dsn, d.DataSourceName())
	})

	t.Run("postgres untouched", func(t *testing.T) {
		dsn := "host=db user=shop dbname=orders"
		d := DatabaseConfig{Driver: DriverPostgres, DSN: dsn}
		assert.Equal(t, dsn, d.DataSourceName())
	})
}
