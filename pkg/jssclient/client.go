// Package jssclient provides the main entry point for creating JSS API
// connections and the process-wide registry of named connections.
package jssclient

import (
	"context"
	"errors"

	"github.com/casperdev-io/jss-client/internal/client"
	"github.com/casperdev-io/jss-client/pkg/jss"
)

// ErrConfigRequired is returned when New is called without a config.
var ErrConfigRequired = errors.New("config is required")

// New creates a connection and connects it. The config is resolved against
// persisted configuration, the local management agent, and module defaults;
// see jss.Config for the precedence rules.
func New(ctx context.Context, config *jss.Config) (jss.Connection, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	conn := client.New()
	if err := conn.Connect(ctx, config); err != nil {
		return nil, err
	}

	return conn, nil
}

// NewUnconnected creates a connection without connecting it. Callers can
// inspect or adjust it and call Connect themselves.
func NewUnconnected() jss.Connection {
	return client.New()
}
