package jss

import (
	"context"
	"time"
)

// Connection is one authenticated session to one JSS. A Connection is either
// fully disconnected or fully connected; there are no partial states. All
// resource objects remember the Connection they were fetched through and use
// it for every further call.
type Connection interface {
	// Connect establishes the session. It is idempotent: reconnecting is
	// always a fresh start, so the connection's caches are flushed first.
	// The supplied Config is resolved against persisted configuration,
	// the local management agent, and module defaults.
	//
	// Connect fails with ErrMissingConfiguration when no source supplies
	// a server, user, or password; with ErrAuthentication when the
	// credentials are rejected; and with ErrUnsupportedServer when the
	// server reports a version below the minimum supported, in which case
	// the connection remains unusable even though the handshake itself
	// succeeded.
	Connect(ctx context.Context, cfg *Config) error

	// Disconnect clears all session state. Safe to call repeatedly.
	Disconnect()

	// Connected reports whether the connection is usable for calls.
	Connected() bool

	// Name is the display name, user-assigned or derived user@host:port.
	Name() string

	// User is the authenticated account name.
	User() string

	// Host is the target server hostname.
	Host() string

	// Port is the resolved server port.
	Port() int

	// BaseURL is the resolved protocol://host:port/[path/]JSSResource.
	BaseURL() string

	// ServerVersion is the version string the server reported during
	// Connect, empty when disconnected.
	ServerVersion() string

	// Get issues a read against a resource path below JSSResource.
	Get(ctx context.Context, path string, format DataFormat) (*Result, error)

	// Put issues an update with an XML payload and returns the server's
	// raw response body. Literal carriage returns in the payload are
	// replaced with their numeric character reference before sending.
	Put(ctx context.Context, path, payload string) (string, error)

	// Post issues a create with an XML payload; CR handling as for Put.
	Post(ctx context.Context, path, payload string) (string, error)

	// Delete removes the resource at path. Fails with ErrMissingData when
	// path is empty.
	Delete(ctx context.Context, path string) (string, error)

	// LastResponse is the most recent raw response observed, retained
	// whether or not the call succeeded. Nil before the first call.
	LastResponse() *Response

	// Lists is this connection's object cache. Cache state is never
	// shared between connections.
	Lists() *ListCache

	// ExtensionAttributes returns the cached extension-attribute
	// definitions for one extendable kind, fetching them on first use or
	// when refresh is set.
	ExtensionAttributes(ctx context.Context, kind ExtendableKind, refresh bool) ([]ListItem, error)

	// FlushCache clears all cached lists, derived maps, and extension
	// attribute definitions.
	FlushCache()

	// FlushTypeCache clears the cached list and derived maps for one
	// resource type.
	FlushTypeCache(t ResourceType)

	// FlushExtAttrCache clears the extension-attribute definition cache
	// for one extendable kind.
	FlushExtAttrCache(kind ExtendableKind)

	// SetTimeout changes the total request timeout on the live session.
	SetTimeout(d time.Duration)

	// SetOpenTimeout changes the connection-establishment timeout used by
	// subsequent requests.
	SetOpenTimeout(d time.Duration)
}
