package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AMQP_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.OrderSvcAddr)
	assert.Equal(t, ":50051", cfg.GRPCHealthAddr)
	assert.False(t, cfg.ReleaseOnCancel)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.Empty(t, cfg.AMQPURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ORDER_SERVICE_ADDR", ":9000")
	t.Setenv("ORDER_RELEASE_ON_CANCEL", "true")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("MENU_CLIENT_TIMEOUT", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.OrderSvcAddr)
	assert.True(t, cfg.ReleaseOnCancel)
	assert.EqualValues(t, 7, cfg.DBMaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.CatalogTimeout)
}

func TestLoad_BadBool(t *testing.T) {
	t.Setenv("ORDER_RELEASE_ON_CANCEL", "maybe")
	_, err := Load()
	assert.Error(t, err)
}
