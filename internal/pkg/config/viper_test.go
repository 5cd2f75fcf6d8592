package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: storefront
modules:
  stepup:
    store_timeout: 3
    passcode_ttl: 300
server:
  cors_origins: "https://a.example, ,https://b.example"
oauth:
  scopes: "google:email profile,github:user:email"
jwt:
  secret: c2VjcmV0
instrument:
  trace_sample_ratio: 0.25
authz:
  policies: "p, admin, *, *; g, alice, admin;"
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)
	defer cfg.Close()

	assert.Equal(t, "storefront", cfg.GetString("app.name"))
	assert.Equal(t, 3*time.Second, cfg.GetSecond("modules.stepup.store_timeout"))
	assert.Equal(t, 5*time.Minute, cfg.GetSecond("modules.stepup.passcode_ttl"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetArray("server.cors_origins"))
	assert.Equal(t, map[string]string{"google": "email profile", "github": "user:email"}, cfg.GetMap("oauth.scopes"))
	assert.Equal(t, []byte("secret"), cfg.GetBinary("jwt.secret"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.Empty(t, cfg.GetArray("missing"))
	assert.Equal(t, []string{"p, admin, *, *", "g, alice, admin"}, cfg.GetList("authz.policies", ";"))
}

func TestViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_APP_NAME", "override")

	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "override", cfg.GetString("app.name"))
}

func TestViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", nil)
	assert.Error(t, err)
}
