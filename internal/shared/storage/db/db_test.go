package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                   { return nil }
func (nopStmt) NumInput() int                                  { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func resetLambdaPool() {
	lambdaMu.Lock()
	lambdaDB = nil
	lambdaMu.Unlock()
}

func TestOpenLambdaSharesPool(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()
	resetLambdaPool()
	defer resetLambdaPool()

	db1, err := Open(context.Background(), "ignored", RoleLambda)
	require.NoError(t, err)
	db2, err := Open(context.Background(), "ignored", RoleLambda)
	require.NoError(t, err)
	assert.Same(t, db1, db2)

	server, err := Open(context.Background(), "ignored", RoleServer)
	require.NoError(t, err)
	defer server.Close()
	assert.NotSame(t, db1, server)
}

func TestOpenLambdaRetriesAfterFailure(t *testing.T) {
	var calls int32
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, driver.ErrBadConn
		}
		ensureTestDriverRegistered()
		return sql.Open("dbtest", dsn)
	}
	defer func() { openDB = prev }()
	resetLambdaPool()
	defer resetLambdaPool()

	_, err := Open(context.Background(), "ignored", RoleLambda)
	require.Error(t, err)
	conn, err := Open(context.Background(), "ignored", RoleLambda)
	require.NoError(t, err)
	assert.NotNil(t, conn)
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "  ", RoleServer)
	assert.Error(t, err)
}

func TestPoolForRoles(t *testing.T) {
	assert.Equal(t, 1, PoolFor(RoleMigrate).MaxOpen)
	assert.Equal(t, 2, PoolFor(RoleLambda).MaxOpen)
	assert.Equal(t, PoolFor(RoleServer), PoolFor(Role("unknown")))
}

func TestPoolForAppliesEnvOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "bogus")

	p := PoolFor(RoleServer)
	assert.Equal(t, 7, p.MaxOpen)
	assert.Equal(t, 3, p.MaxIdle)
	assert.Equal(t, 20*time.Minute, p.Lifetime)
	assert.Equal(t, 45*time.Second, p.IdleTime)
	assert.Equal(t, 5*time.Second, p.PingTimeout, "invalid value keeps default")

	conn, err := Open(context.Background(), "ignored", RoleServer)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, 7, conn.Stats().MaxOpenConnections)
}

func TestRuntimeRole(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	assert.Equal(t, RoleServer, RuntimeRole())
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "placement-worker")
	assert.Equal(t, RoleLambda, RuntimeRole())
}

func TestExecVersioned(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	const query = "UPDATE placement_users SET payload = $2 WHERE id = $1 AND version = $3"
	mock.ExpectExec("UPDATE placement_users").WithArgs("u1", "{}", int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE placement_users").WithArgs("u1", "{}", int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE placement_users").WithArgs("u1", "{}", int64(4)).WillReturnError(driver.ErrBadConn)

	ctx := context.Background()
	require.NoError(t, ExecVersioned(ctx, conn, query, "u1", "{}", int64(3)))
	assert.ErrorIs(t, ExecVersioned(ctx, conn, query, "u1", "{}", int64(2)), ErrStale)
	err = ExecVersioned(ctx, conn, query, "u1", "{}", int64(4))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStale))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsNilIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil))
}

func TestMigrationNamesEmbedded(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_placement_users.sql", "00002_placement_users_version.sql"}, names)
}
