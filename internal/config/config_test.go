package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/nextgen-portal/client"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
services:
  search: http://search.local:8080
  catalog: http://catalog.local:8081
client:
  timeout: 5s
  failurePolicy: propagate
server:
  sessionStore: redis
  redisAddr: localhost:6379
`)
	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://search.local:8080", conf.Services.Search)
	assert.Equal(t, 5*time.Second, conf.Client.Timeout)
	assert.Equal(t, "en", conf.Client.Language, "defaults survive a partial file")
	assert.Equal(t, 10, conf.Search.DefaultLimit)

	cc := conf.ClientConfig()
	assert.Equal(t, client.PolicyPropagate, cc.FailurePolicy)
	assert.Equal(t, "http://catalog.local:8081", cc.CatalogURL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvSearchServiceURL, "http://env-search")
	t.Setenv(EnvCatalogServiceURL, "http://env-catalog")

	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env-search", conf.Services.Search)
	assert.Equal(t, "http://env-catalog", conf.Services.Catalog)
	assert.Equal(t, "memory", conf.Server.SessionStore)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.Services = Services{Search: "http://s", Catalog: "http://c"}
	require.NoError(t, base.Validate())

	missing := base
	missing.Services.Catalog = ""
	assert.Error(t, missing.Validate())

	policy := base
	policy.Client.FailurePolicy = "rethrow"
	assert.Error(t, policy.Validate())

	store := base
	store.Server.SessionStore = "postgres"
	assert.Error(t, store.Validate())
	store.Server.PostgresDsn = "host=localhost"
	assert.NoError(t, store.Validate())

	trace := base
	trace.Server.EnableTrace = true
	assert.Error(t, trace.Validate())
	trace.Server.TraceEndpoint = "localhost:4318"
	assert.NoError(t, trace.Validate())
}
