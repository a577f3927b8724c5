package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL(t *testing.T) {
	cases := map[string]string{
		"localhost":       "http://localhost:5000",
		"127.0.0.1":       "http://127.0.0.1:5000",
		"192.168.1.10":    "http://192.168.1.10:5000",
		"10.0.0.5":        "http://10.0.0.5:5000",
		"172.16.4.2":      "http://172.16.4.2:5000",
		"dialin.example":  ProductionAPI,
		"":                ProductionAPI,
		"1.10.0.1":        ProductionAPI,
		"localhost.local": ProductionAPI,
	}
	for host, want := range cases {
		assert.Equal(t, want, ResolveBaseURL(host), host)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DIALIN_HOST", "192.168.0.7")
	t.Setenv("DIALIN_API_URL", "")
	t.Setenv("IDENTITY_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.0.7:5000", cfg.API.BaseURL)
	assert.Equal(t, IdentityBackendBolt, cfg.Identity.Backend)
	assert.Equal(t, "127.0.0.1:5000", cfg.DevServerAddress())
}

func TestLoadOverride(t *testing.T) {
	t.Setenv("DIALIN_API_URL", "http://backend.test:9000/")
	t.Setenv("IDENTITY_BACKEND", "Redis")
	t.Setenv("HTTP_TIMEOUT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://backend.test:9000", cfg.API.BaseURL)
	assert.Equal(t, IdentityBackendRedis, cfg.Identity.Backend)
	assert.Equal(t, "3s", cfg.API.Timeout.String())
}

func TestLoadRejectsUnknownIdentityBackend(t *testing.T) {
	t.Setenv("IDENTITY_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
}
