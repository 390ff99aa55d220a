package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wheels/internal/config"
	"wheels/internal/modules/distance"
)

func TestNewRedis_EmptyAddrDisablesCache(t *testing.T) {
	assert.Nil(t, NewRedis(""))

	rdb := NewRedis("127.0.0.1:6379")
	require.NotNil(t, rdb)
	assert.Equal(t, "127.0.0.1:6379", rdb.Options().Addr)
	_ = rdb.Close()
}

func TestNewLogger_NamesService(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		log, err := NewLogger(env, "matchmaking-api")
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}

func TestNewOracles(t *testing.T) {
	o, err := NewOracles(config.MapsConfig{}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, o.Routes)
	assert.Nil(t, o.Distance)

	o, err = NewOracles(config.MapsConfig{APIKey: "test-key"}, nil, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, o.Routes)
	assert.Same(t, o.Routes, o.Distance)

	rdb := NewRedis("127.0.0.1:6379")
	defer rdb.Close()
	o, err = NewOracles(config.MapsConfig{APIKey: "test-key", CacheTTL: time.Hour}, rdb, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &distance.CachedOracle{}, o.Distance)
}
