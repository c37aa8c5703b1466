package jssclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/casperdev-io/jss-client/pkg/jssclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the authenticated bootstrap endpoint a Connect needs.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/JSSResource/jssuser", func(writer http.ResponseWriter, request *http.Request) {
		_, password, ok := request.BasicAuth()
		if !ok || password != "hunter2" {
			writer.WriteHeader(http.StatusUnauthorized)

			return
		}

		_ = json.NewEncoder(writer).Encode(map[string]interface{}{
			"user": map[string]interface{}{"name": "admin", "version": "10.2.0"},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func serverConfig(server *httptest.Server) *jss.Config {
	parsed, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(parsed.Port())

	return &jss.Config{
		Server:   parsed.Hostname(),
		Port:     port,
		User:     "admin",
		Password: "hunter2",
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("connects", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t)

		conn, err := jssclient.New(context.Background(), serverConfig(server))
		require.NoError(t, err)
		assert.True(t, conn.Connected())
		assert.Equal(t, "10.2.0", conn.ServerVersion())
	})

	t.Run("nil config rejected", func(t *testing.T) {
		t.Parallel()

		_, err := jssclient.New(context.Background(), nil)
		require.ErrorIs(t, err, jssclient.ErrConfigRequired)
	})

	t.Run("connect failure surfaces", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t)

		cfg := serverConfig(server)
		cfg.Password = "wrong"

		_, err := jssclient.New(context.Background(), cfg)
		require.ErrorIs(t, err, jss.ErrAuthentication)
	})
}

func TestNewUnconnected(t *testing.T) {
	t.Parallel()

	conn := jssclient.NewUnconnected()
	assert.False(t, conn.Connected())

	_, err := conn.Get(context.Background(), "categories", jss.FormatJSON)
	require.ErrorIs(t, err, jss.ErrNotConnected)
}

func TestRegistry_DefaultConnection(t *testing.T) {
	t.Parallel()

	registry := jssclient.NewRegistry()

	active := registry.Active()
	require.NotNil(t, active, "a default connection always exists")
	assert.False(t, active.Connected())

	assert.Same(t, active, registry.Active(), "the default is stable across calls")
}

func TestRegistry_CreateAndActivate(t *testing.T) {
	t.Parallel()

	t.Run("success activates", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t)
		registry := jssclient.NewRegistry()

		conn, err := registry.CreateAndActivate(context.Background(), serverConfig(server))
		require.NoError(t, err)
		assert.Same(t, conn, registry.Active())
		assert.Same(t, conn, registry.Named(conn.Name()))
	})

	t.Run("failed connect still activates", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t)
		registry := jssclient.NewRegistry()

		cfg := serverConfig(server)
		cfg.Password = "wrong"

		conn, err := registry.CreateAndActivate(context.Background(), cfg)
		require.ErrorIs(t, err, jss.ErrAuthentication)
		require.NotNil(t, conn)
		assert.Same(t, conn, registry.Active(), "the failed connection is active for inspection")
		assert.False(t, conn.Connected())
	})
}

func TestRegistry_Activate(t *testing.T) {
	t.Parallel()

	registry := jssclient.NewRegistry()

	err := registry.Activate(nil)
	require.ErrorIs(t, err, jss.ErrInvalidData)

	conn := jssclient.NewUnconnected()
	require.NoError(t, registry.Activate(conn))
	assert.Same(t, conn, registry.Active())
}

func TestRegistry_RestoreDefault(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	registry := jssclient.NewRegistry()

	def := registry.Active()

	conn, err := registry.CreateAndActivate(context.Background(), serverConfig(server))
	require.NoError(t, err)
	require.Same(t, conn, registry.Active())

	restored := registry.RestoreDefault()
	assert.Same(t, def, restored)
	assert.Same(t, def, registry.Active())
}
