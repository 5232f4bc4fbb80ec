package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/config"
)

// CreatePoolAndPing builds the process-wide connection pool. Dropped
// connections are re-established by the pool itself; health checks keep idle
// connections honest during long batch work. Construction failure is fatal
// for every caller, so it is logged (credentials redacted) and returned.
func CreatePoolAndPing(ctx context.Context, cfg config.DbServer) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetConnectionStr())
	if err != nil {
		logConnectError(cfg, err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.HealthCheckPeriod = time.Minute
	poolCfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logConnectError(cfg, err)
		return nil, err
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		logConnectError(cfg, err)
		return nil, err
	}
	return pool, nil
}

func logConnectError(cfg config.DbServer, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"user":     cfg.User,
		"password": "REDACTED",
		"database": config.DatabaseName,
	}).Error("Error connecting to database")
}
