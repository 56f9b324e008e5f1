// Package db opens the Postgres pool behind the placement state store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"placement-backend/internal/shared/telemetry"
)

// Role is the kind of process that opens the pool. API servers, queue workers
// and Lambda functions all write the same placement_users table.
type Role string

const (
	RoleServer  Role = "server"
	RoleLambda  Role = "lambda"
	RoleMigrate Role = "migrate"
)

// PoolOptions sizes a connection pool.
type PoolOptions struct {
	MaxOpen     int
	MaxIdle     int
	Lifetime    time.Duration
	IdleTime    time.Duration
	PingTimeout time.Duration
}

var rolePools = map[Role]PoolOptions{
	RoleServer:  {MaxOpen: 10, MaxIdle: 5, Lifetime: time.Hour, IdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
	RoleLambda:  {MaxOpen: 2, MaxIdle: 1, Lifetime: 15 * time.Minute, IdleTime: 30 * time.Second, PingTimeout: 3 * time.Second},
	RoleMigrate: {MaxOpen: 1, MaxIdle: 1, Lifetime: time.Hour, IdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
}

var (
	openDB = sql.Open

	lambdaMu sync.Mutex
	lambdaDB *sql.DB
)

// RuntimeRole is RoleLambda inside AWS Lambda and RoleServer elsewhere.
func RuntimeRole() Role {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return RoleLambda
	}
	return RoleServer
}

// PoolFor returns the pool for role with DB_* environment overrides applied.
// Unknown roles get the server pool.
func PoolFor(role Role) PoolOptions {
	p, ok := rolePools[role]
	if !ok {
		p = rolePools[RoleServer]
	}
	envInt(&p.MaxOpen, "DB_MAX_OPEN_CONNS")
	envInt(&p.MaxIdle, "DB_MAX_IDLE_CONNS")
	envDuration(&p.Lifetime, "DB_CONN_MAX_LIFETIME")
	envDuration(&p.IdleTime, "DB_CONN_MAX_IDLE_TIME")
	envDuration(&p.PingTimeout, "DB_PING_TIMEOUT")
	return p
}

// Open connects to databaseURL sized for role. Lambda invocations share one
// pool per execution environment; a failed attempt is retried on the next call.
func Open(ctx context.Context, databaseURL string, role Role) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if role != RoleLambda {
		return connect(ctx, databaseURL, role, PoolFor(role))
	}

	lambdaMu.Lock()
	defer lambdaMu.Unlock()
	if lambdaDB != nil {
		return lambdaDB, nil
	}
	conn, err := connect(ctx, databaseURL, role, PoolFor(role))
	if err != nil {
		return nil, err
	}
	lambdaDB = conn
	return conn, nil
}

func connect(ctx context.Context, databaseURL string, role Role, p PoolOptions) (*sql.DB, error) {
	conn, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(max(p.MaxOpen, 1))
	conn.SetMaxIdleConns(max(p.MaxIdle, 0))
	conn.SetConnMaxLifetime(p.Lifetime)
	conn.SetConnMaxIdleTime(p.IdleTime)

	timeout := p.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.pool.open", map[string]any{
		"role":     string(role),
		"max_open": conn.Stats().MaxOpenConnections,
		"max_idle": p.MaxIdle,
	})
	return conn, nil
}

func envInt(dst *int, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = v
}

func envDuration(dst *time.Duration, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = v
}
