package transport_test

import (
	"errors"
	"testing"
	"time"

	"github.com/casperdev-io/jss-client/internal/transport"
	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource contributes a fixed settings fragment.
type stubSource struct {
	values *transport.Values
	err    error
}

func (s *stubSource) Values() (*transport.Values, error) {
	return s.values, s.err
}

func boolPtr(v bool) *bool { return &v }

func TestResolve_ExplicitValuesWin(t *testing.T) {
	t.Parallel()

	fileValues := &stubSource{values: &transport.Values{
		Server: "file.example.org",
		Port:   9006,
		User:   "fileuser",
	}}

	cfg := &jss.Config{
		Server: "explicit.example.org",
		Port:   8443,
		User:   "admin",
	}

	settings, err := transport.Resolve(cfg, fileValues)
	require.NoError(t, err)
	assert.Equal(t, "explicit.example.org", settings.Host)
	assert.Equal(t, 8443, settings.Port)
	assert.Equal(t, "admin", settings.User)
}

func TestResolve_SourcesConsultedInOrder(t *testing.T) {
	t.Parallel()

	file := &stubSource{values: &transport.Values{Server: "file.example.org"}}
	agent := &stubSource{values: &transport.Values{Server: "agent.example.org", User: "agentuser"}}

	settings, err := transport.Resolve(&jss.Config{User: "admin"}, file, agent)
	require.NoError(t, err)
	assert.Equal(t, "file.example.org", settings.Host, "earlier source wins")
	assert.Equal(t, "admin", settings.User)
}

func TestResolve_SourceFillsOnlyBlanks(t *testing.T) {
	t.Parallel()

	agent := &stubSource{values: &transport.Values{
		Server: "agent.example.org",
		User:   "agentuser",
		Port:   9006,
	}}

	settings, err := transport.Resolve(&jss.Config{Server: "explicit.example.org", User: "admin"}, agent)
	require.NoError(t, err)
	assert.Equal(t, "explicit.example.org", settings.Host)
	assert.Equal(t, "admin", settings.User)
	assert.Equal(t, 9006, settings.Port, "port was blank, so the agent's value applies")
}

func TestResolve_MissingServerOrUser(t *testing.T) {
	t.Parallel()

	_, err := transport.Resolve(&jss.Config{User: "admin"})
	require.ErrorIs(t, err, jss.ErrMissingConfiguration)
	assert.Contains(t, err.Error(), "server")

	_, err = transport.Resolve(&jss.Config{Server: "jss.example.org"})
	require.ErrorIs(t, err, jss.ErrMissingConfiguration)
	assert.Contains(t, err.Error(), "username")
}

func TestResolve_SourceErrorSurfaces(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt file")

	_, err := transport.Resolve(&jss.Config{Server: "jss.example.org", User: "admin"}, &stubSource{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestResolve_PortDefaults(t *testing.T) {
	t.Parallel()

	t.Run("cloud host gets 443", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "acme.jamfcloud.com", User: "admin"})
		require.NoError(t, err)
		assert.Equal(t, 443, settings.Port)
		assert.True(t, settings.UseSSL)
	})

	t.Run("cloud suffix is case-insensitive", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "ACME.JamfCloud.Com", User: "admin"})
		require.NoError(t, err)
		assert.Equal(t, 443, settings.Port)
	})

	t.Run("on-prem host gets 8443", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "jss.example.org", User: "admin"})
		require.NoError(t, err)
		assert.Equal(t, 8443, settings.Port)
		assert.True(t, settings.UseSSL)
	})

	t.Run("explicit port beats cloud detection", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "acme.jamfcloud.com", User: "admin", Port: 8443})
		require.NoError(t, err)
		assert.Equal(t, 8443, settings.Port)
	})
}

func TestResolve_SSLSelection(t *testing.T) {
	t.Parallel()

	t.Run("non-ssl port disables ssl", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "jss.example.org", User: "admin", Port: 9006})
		require.NoError(t, err)
		assert.False(t, settings.UseSSL)
		assert.Equal(t, "http", settings.Protocol)
	})

	t.Run("explicit UseSSL overrides port heuristic", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{
			Server: "jss.example.org",
			User:   "admin",
			Port:   9006,
			UseSSL: boolPtr(true),
		})
		require.NoError(t, err)
		assert.True(t, settings.UseSSL)
		assert.Equal(t, "https", settings.Protocol)
	})

	t.Run("ssl can be forced off on an ssl port", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{
			Server: "jss.example.org",
			User:   "admin",
			UseSSL: boolPtr(false),
		})
		require.NoError(t, err)
		assert.False(t, settings.UseSSL)
		assert.Equal(t, 8443, settings.Port, "forcing ssl off leaves the port alone")
	})
}

func TestResolve_BaseURL(t *testing.T) {
	t.Parallel()

	t.Run("standard layout", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "jss.example.org", User: "admin"})
		require.NoError(t, err)
		assert.Equal(t, "https://jss.example.org:8443/JSSResource", settings.BaseURL)
	})

	t.Run("server path prefix", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{
			Server:     "jss.example.org",
			User:       "admin",
			ServerPath: "/jamf/",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://jss.example.org:8443/jamf/JSSResource", settings.BaseURL)
	})

	t.Run("plain http", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "jss.example.org", User: "admin", Port: 9006})
		require.NoError(t, err)
		assert.Equal(t, "http://jss.example.org:9006/JSSResource", settings.BaseURL)
	})
}

func TestResolve_TimeoutsAndVerification(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{Server: "jss.example.org", User: "admin"})
		require.NoError(t, err)
		assert.Equal(t, transport.DefaultTimeout, settings.Timeout)
		assert.Equal(t, transport.DefaultOpenTimeout, settings.OpenTimeout)
		assert.True(t, settings.VerifyCert)
	})

	t.Run("explicit values", func(t *testing.T) {
		t.Parallel()

		settings, err := transport.Resolve(&jss.Config{
			Server:      "jss.example.org",
			User:        "admin",
			Timeout:     90 * time.Second,
			OpenTimeout: 10 * time.Second,
			VerifyCert:  boolPtr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, settings.Timeout)
		assert.Equal(t, 10*time.Second, settings.OpenTimeout)
		assert.False(t, settings.VerifyCert)
	})
}
