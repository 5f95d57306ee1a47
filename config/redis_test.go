package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCmdable struct {
	pingErr error
	values  map[string]string
}

func (f *fakeCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.pingErr)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisClientCommands(t *testing.T) {
	ctx := context.Background()
	client := &RedisClient{store: &fakeCmdable{values: map[string]string{}}}

	require.NoError(t, client.Ping(ctx))

	ok, err := client.SetNX(ctx, "k", "a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = client.SetNX(ctx, "k", "b", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NoError(t, client.Del(ctx, "k"))
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, redis.Nil)
	assert.NoError(t, client.Close())
}

func TestRedisClientPingFailure(t *testing.T) {
	down := errors.New("connection refused")
	client := &RedisClient{store: &fakeCmdable{pingErr: down}}
	assert.ErrorIs(t, client.Ping(context.Background()), down)

	empty := &RedisClient{}
	assert.Error(t, empty.Ping(context.Background()))
}

func TestInitRedisRejectsBadConfig(t *testing.T) {
	_, err := InitRedis(context.Background(), RedisConfig{})
	assert.Error(t, err)

	_, err = InitRedis(context.Background(), RedisConfig{URL: "http://not-redis"})
	assert.ErrorContains(t, err, "parsing redis url")
}
