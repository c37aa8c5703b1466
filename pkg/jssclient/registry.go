package jssclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/casperdev-io/jss-client/internal/client"
	"github.com/casperdev-io/jss-client/pkg/jss"
)

// Registry tracks named connections and designates exactly one as active.
// Operations that do not name a connection explicitly run through the active
// one. All registry operations are safe for concurrent use.
//
// A default unconnected connection always exists, created lazily on first
// access, so Active never returns nil.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]jss.Connection
	active jss.Connection
	def    jss.Connection
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]jss.Connection),
	}
}

// Active returns the active connection, lazily creating the default
// unconnected one when nothing has been activated yet.
func (r *Registry) Active() jss.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.activeLocked()
}

func (r *Registry) activeLocked() jss.Connection {
	if r.def == nil {
		r.def = client.New()
	}

	if r.active == nil {
		r.active = r.def
	}

	return r.active
}

// CreateAndActivate constructs a new connection, attempts to connect it with
// the given config, and makes it the active one regardless of the connect
// outcome, so the caller can inspect the failed connection before deciding
// to retry. The connection and the connect error are both returned.
func (r *Registry) CreateAndActivate(ctx context.Context, cfg *jss.Config) (jss.Connection, error) {
	conn := client.New()
	err := conn.Connect(ctx, cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn.Name()] = conn
	r.active = conn

	return conn, err
}

// Activate switches the active pointer to an already-constructed
// connection.
func (r *Registry) Activate(conn jss.Connection) error {
	if conn == nil {
		return fmt.Errorf("%w: a connection is required to activate", jss.ErrInvalidData)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn.Name()] = conn
	r.active = conn

	return nil
}

// RestoreDefault re-activates the originally created default connection and
// returns it.
func (r *Registry) RestoreDefault() jss.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.def == nil {
		r.def = client.New()
	}

	r.active = r.def

	return r.active
}

// Named returns the registered connection with the given name, or nil.
func (r *Registry) Named(name string) jss.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.conns[name]
}

// defaultRegistry is the process-wide registry used by the package-level
// convenience functions. Callers working against several servers should
// hold connection handles explicitly instead.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Active returns the process-wide active connection.
func Active() jss.Connection {
	return defaultRegistry.Active()
}

// CreateAndActivate constructs, connects, and activates a connection in the
// process-wide registry.
func CreateAndActivate(ctx context.Context, cfg *jss.Config) (jss.Connection, error) {
	return defaultRegistry.CreateAndActivate(ctx, cfg)
}

// Activate switches the process-wide active connection.
func Activate(conn jss.Connection) error {
	return defaultRegistry.Activate(conn)
}

// RestoreDefault re-activates the process-wide default connection.
func RestoreDefault() jss.Connection {
	return defaultRegistry.RestoreDefault()
}
