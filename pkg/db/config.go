package db

import (
	"time"

	"github.com/smallbiznis/wardboard/internal/config"
)

// PoolConfig bounds the shared connection pool.
type PoolConfig struct {
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func PoolConfigFrom(cfg config.Config) PoolConfig {
	pool := PoolConfig{
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTime) * time.Second,
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY churn.
	if cfg.DBType == "sqlite" {
		pool.MaxOpenConn = 1
		pool.MaxIdleConn = 1
	}
	return pool
}
