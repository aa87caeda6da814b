package db

import (
	"net"
	"net/url"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config captures the connection parameters for a MySQL instance.
type Config struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Params   string
}

// FromEnv populates a Config using sensible defaults that can be overridden via environment variables.
func FromEnv() Config {
	cfg := Config{
		User:     getEnv("MYSQL_USER", "analyst"),
		Password: getEnv("MYSQL_PASSWORD", "analyst"),
		Host:     getEnv("MYSQL_HOST", "127.0.0.1"),
		Port:     getEnv("MYSQL_PORT", "3306"),
		Database: getEnv("MYSQL_DATABASE", "ecommerce"),
		Params:   getEnv("MYSQL_PARAMS", "charset=utf8mb4"),
	}
	return cfg
}

// DSN renders the go-sql-driver connection string. DATETIME values are read
// and written as UTC so wall-clock times survive the round trip whatever the
// host zone is.
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	if extra, err := url.ParseQuery(c.Params); err == nil && len(extra) > 0 {
		mc.Params = make(map[string]string, len(extra))
		for k := range extra {
			mc.Params[k] = extra.Get(k)
		}
	}
	return mc.FormatDSN()
}

// MigrationURL is the DSN in the form golang-migrate's mysql driver expects.
func (c Config) MigrationURL() string {
	return "mysql://" + c.DSN()
}

// Open returns a gorm DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		// foreign keys are owned by the constraint migrations
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	gdb, err := gorm.Open(gormmysql.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return gdb, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
