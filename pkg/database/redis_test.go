package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/debate-tab/internal/config"
)

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.RedisConfig
		wantAddrs  []string
		wantMaster string
		wantErr    string
	}{
		{
			name:      "single from addr",
			cfg:       config.RedisConfig{Addr: "localhost:6379"},
			wantAddrs: []string{"localhost:6379"},
		},
		{
			name:      "single keeps first of addrs",
			cfg:       config.RedisConfig{Mode: "single", Addrs: []string{"a:6379", "b:6379"}},
			wantAddrs: []string{"a:6379"},
		},
		{
			name:       "sentinel",
			cfg:        config.RedisConfig{Mode: "sentinel", Addrs: []string{"s1:26379", "s2:26379"}, MasterName: "tab"},
			wantAddrs:  []string{"s1:26379", "s2:26379"},
			wantMaster: "tab",
		},
		{
			name:    "sentinel without master",
			cfg:     config.RedisConfig{Mode: "sentinel", Addr: "s1:26379"},
			wantErr: "master_name",
		},
		{
			name:    "no address",
			cfg:     config.RedisConfig{},
			wantErr: "addrs or addr",
		},
		{
			name:    "cluster is not supported",
			cfg:     config.RedisConfig{Mode: "cluster", Addrs: []string{"a:6379", "b:6379"}},
			wantErr: "unsupported redis mode: cluster",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := redisOptions(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddrs, opts.Addrs)
			assert.Equal(t, tt.wantMaster, opts.MasterName)
		})
	}
}

func TestRedisOptions_RetryBackoffInMilliseconds(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{Addr: "localhost:6379", MaxRetries: 3, MinRetryBackoff: 8, MaxRetryBackoff: 512})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 8*time.Millisecond, opts.MinRetryBackoff)
	assert.Equal(t, 512*time.Millisecond, opts.MaxRetryBackoff)
}
