package config

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func withEnv(t *testing.T, env map[string]string, fn func(t *testing.T)) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
	ResetForTest()
	UseRedisClient(nil)
	t.Cleanup(func() {
		ResetForTest()
		UseRedisClient(nil)
	})
	fn(t)
}

func TestConnectRedis_Disabled(t *testing.T) {
	withEnv(t, map[string]string{"APPENV": "development", "REDIS_ENABLED": "false"}, func(t *testing.T) {
		rdb, err := ConnectRedis()
		assert.NoError(t, err)
		assert.Nil(t, rdb)
	})
}

func TestConnectRedis_SkippedInTestEnv(t *testing.T) {
	withEnv(t, map[string]string{"APPENV": "test", "REDIS_ENABLED": "true"}, func(t *testing.T) {
		rdb, err := ConnectRedis()
		assert.NoError(t, err)
		assert.Nil(t, rdb)
	})
}

func TestConnectRedis_UnreachableServer(t *testing.T) {
	withEnv(t, map[string]string{
		"APPENV":        "development",
		"REDIS_ENABLED": "true",
		"REDIS_ADDR":    "127.0.0.1:1",
	}, func(t *testing.T) {
		rdb, err := ConnectRedis()
		assert.Error(t, err)
		assert.Nil(t, rdb)
		assert.Nil(t, GetRedisClient())
	})
}

func TestConnectRedis_ConcurrentCalls(t *testing.T) {
	withEnv(t, map[string]string{"REDIS_ENABLED": "false"}, func(t *testing.T) {
		type callResult struct {
			rdb interface{}
			err error
		}
		done := make(chan callResult, 5)
		for i := 0; i < 5; i++ {
			go func() {
				rdb, err := ConnectRedis()
				done <- callResult{rdb: rdb, err: err}
			}()
		}

		for i := 0; i < 5; i++ {
			res := <-done
			assert.NoError(t, res.err)
			assert.Nil(t, res.rdb)
		}
	})
}

func TestUseRedisClient(t *testing.T) {
	withEnv(t, map[string]string{}, func(t *testing.T) {
		client, _ := redismock.NewClientMock()
		UseRedisClient(client)
		assert.Same(t, client, GetRedisClient())

		UseRedisClient(nil)
		assert.Nil(t, GetRedisClient())
	})
}
