package database

import (
	"fmt"
	"time"

	"github.com/avicenna-clinic/avicenna_backend/config"
)

// Config holds database connection and behavior settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Connection pooling
	MaxConns           int
	MinConns           int
	ConnMaxLifetimeMin int

	// Migration control
	AutoMigrate   bool
	MigrationsDir string
}

// DSN returns a PostgreSQL connection string
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Host:               "localhost",
		Port:               5432,
		SSLMode:            "disable",
		MaxConns:           25,
		MinConns:           2,
		ConnMaxLifetimeMin: 5,
		AutoMigrate:        false,
		MigrationsDir:      "migrations",
	}
}

// FromCentralConfig converts central config.DatabaseConfig to package Config
func FromCentralConfig(c config.DatabaseConfig) Config {
	cfg := Config{
		Host:          c.Host,
		Port:          c.Port,
		User:          c.User,
		Password:      c.Password,
		DBName:        c.DBName,
		SSLMode:       c.SSLMode,
		AutoMigrate:   c.Migrations.AutoMigrate,
		MigrationsDir: c.Migrations.Dir,
	}

	def := DefaultConfig()
	if c.Pool.MaxConns > 0 {
		cfg.MaxConns = c.Pool.MaxConns
	} else {
		cfg.MaxConns = def.MaxConns
	}
	if c.Pool.MinConns > 0 {
		cfg.MinConns = c.Pool.MinConns
	} else {
		cfg.MinConns = def.MinConns
	}
	if c.Pool.ConnMaxLifetimeMin > 0 {
		cfg.ConnMaxLifetimeMin = c.Pool.ConnMaxLifetimeMin
	} else {
		cfg.ConnMaxLifetimeMin = def.ConnMaxLifetimeMin
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = def.MigrationsDir
	}

	return cfg
}

// NewDSN creates a DSN string from central config.DatabaseConfig
func NewDSN(c config.DatabaseConfig) string {
	return FromCentralConfig(c).DSN()
}
