package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Reparaciones-api/pkg/config"
)

const (
	applicationName = "reparaciones-api"
	pingAttempts    = 5
	pingBackoff     = 2 * time.Second
)

// NewPool crea el pool de conexiones del taller.
// Los importes (NUMERIC) se leen y escriben como decimal.Decimal y la sesión
// trabaja en UTC; la conversión a la zona del taller se hace en la aplicación.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 15 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	rp := poolConfig.ConnConfig.RuntimeParams
	rp["application_name"] = applicationName
	rp["timezone"] = "UTC"

	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := waitForDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// waitForDB reintenta el ping mientras la base arranca (docker compose levanta
// ambos contenedores a la vez).
func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	var err error
	for i := 1; i <= pingAttempts; i++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if i == pingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pingBackoff * time.Duration(i)):
		}
	}
	return fmt.Errorf("ping DB tras %d intentos: %w", pingAttempts, err)
}
