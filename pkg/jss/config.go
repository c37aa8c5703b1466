package jss

import (
	"io"
	"time"
)

// Config holds the caller-supplied portion of a connection's settings.
//
// # Resolution precedence
//
// When Connect resolves each field it applies, in order: the value set here,
// the persisted configuration file, the local management agent's own
// configuration (when the host is enrolled), and finally the module default.
// Port selection has one special case: when no port was requested anywhere
// and the server name ends in the known cloud-hosting domain, the cloud
// default port (443) is used instead of the on-prem SSL port (8443).
//
// # Password sources
//
// Provide exactly one of:
//   - Password: the literal value.
//   - PromptForPassword: read interactively without echo.
//   - PasswordLine > 0: read that line (1-based) from PasswordInput, which
//     defaults to standard input. Useful when a wrapper feeds secrets on a
//     pipe alongside other data.
type Config struct {
	// Name is the display name for this connection. If empty, Connect
	// derives "user@host:port" once connected.
	Name string

	// Server is the hostname of the JSS. Required (from some source).
	Server string

	// Port is the server port. 0 means "pick the default for the host".
	Port int

	// ServerPath is an optional path prefix between the port and
	// JSSResource, for servers deployed below the web root.
	ServerPath string

	// User is the JSS API account name. Required (from some source).
	User string

	// Password is the literal API account password.
	Password string

	// PromptForPassword reads the password interactively.
	PromptForPassword bool

	// PasswordLine reads the password from line N of PasswordInput.
	PasswordLine int

	// PasswordInput is the stream PasswordLine reads from. Defaults to
	// standard input.
	PasswordInput io.Reader

	// UseSSL forces HTTPS on or off. When nil, SSL is enabled unless the
	// resolved port is not a recognized SSL port.
	UseSSL *bool

	// VerifyCert controls TLS certificate verification. When nil,
	// verification is enabled.
	VerifyCert *bool

	// OpenTimeout bounds connection establishment. Zero means the module
	// default of 60s.
	OpenTimeout time.Duration

	// Timeout bounds the whole request. Zero means the module default of
	// 60s.
	Timeout time.Duration

	// RetryMax enables transparent retries on 5xx and connection errors
	// when greater than zero. The default of zero preserves the
	// no-internal-retry contract: a timeout or transient failure surfaces
	// to the caller.
	RetryMax int

	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration

	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Debug enables request/response logging through Logger.
	Debug bool

	// Logger receives structured log events. Nil disables logging.
	Logger Logger
}

// Logger is the interface log events are written to.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
