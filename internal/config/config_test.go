package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaults(t *testing.T) {
	cfg := newDefaultConfig()

	assert.Equal(t, "openai", cfg.GetLLM().Provider)

	server := cfg.GetServer()
	assert.Equal(t, "0.0.0.0:8080", server.ListenAddress)
	assert.Equal(t, []string{"http://localhost:5173"}, server.CORSAllowOrigins)

	store := cfg.GetStore()
	assert.Equal(t, "sqlite", store.Type)
	assert.Equal(t, "/data/antispam_admin.db", store.SQLitePath)
	assert.True(t, store.Seed)

	openai := cfg.GetOpenAI()
	assert.Equal(t, "gpt-4o-mini", openai.ModelName)
	assert.Equal(t, 256, openai.MaxTokens)
	assert.Equal(t, float32(0.0), openai.Temperature)

	bedrock := cfg.GetBedrock()
	assert.Equal(t, "us-east-1", bedrock.Region)
	assert.Equal(t, "anthropic.claude-v2", bedrock.ModelID)

	assert.Equal(t, "info", cfg.GetString("logging.level"))
	assert.Equal(t, "json", cfg.GetString("logging.format"))
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("llm.provider", "bedrock")
	v.Set("store.type", "mysql")
	v.Set("server.listen_address", "127.0.0.1:9090")
	cfg := NewFromViper(v)

	assert.Equal(t, "bedrock", cfg.GetLLM().Provider)
	assert.Equal(t, "mysql", cfg.GetStore().Type)
	assert.Equal(t, "127.0.0.1:9090", cfg.GetServer().ListenAddress)
}

func TestGetDuration(t *testing.T) {
	cfg := newDefaultConfig()

	timeout, err := cfg.GetDuration("server.shutdown_timeout")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)

	v := NewEmptyViper()
	v.Set("server.shutdown_timeout", "soon")
	_, err = NewFromViper(v).GetDuration("server.shutdown_timeout")
	assert.Error(t, err)
}
