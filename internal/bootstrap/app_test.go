package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement-backend/internal/queue"
	"placement-backend/internal/shared/config"
	"placement-backend/internal/state"
)

func TestBuildDefaultsToMemory(t *testing.T) {
	app, err := Build(config.Config{LocalStoreDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.NotNil(t, app.Router)
	assert.IsType(t, &state.MemoryStore{}, app.State)
	assert.Nil(t, app.Queue)
	assert.Equal(t, queue.BackendInline, app.QueueBackend())
	assert.Equal(t, "dev", app.Config.Env)
}

func TestBuildPostgresFallsBackInDev(t *testing.T) {
	app, err := Build(config.Config{Env: "dev", StateStore: "postgres", LocalStoreDir: t.TempDir()})
	require.NoError(t, err)
	assert.Nil(t, app.DB)
	assert.IsType(t, &state.MemoryStore{}, app.State)
}

func TestBuildRejectsMissingConfigOutsideDev(t *testing.T) {
	_, err := Build(config.Config{Env: "production", StateStore: "postgres", LocalStoreDir: t.TempDir()})
	assert.Error(t, err)

	_, err = Build(config.Config{Env: "production", ObjectStoreType: "s3"})
	assert.Error(t, err)

	_, err = Build(config.Config{QueueBackend: queue.BackendSQS, LocalStoreDir: t.TempDir()})
	assert.Error(t, err, "sqs needs a queue url")
}

func TestBuildToleratesUnreachableSharedRedis(t *testing.T) {
	app, err := Build(config.Config{RedisURL: "redis://127.0.0.1:1/0", LocalStoreDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Nil(t, app.Redis)
	assert.NotNil(t, app.GoogleAuth)
}
