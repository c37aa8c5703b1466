// Package client implements the jss.Connection contract: one authenticated
// session to one server, with connect/disconnect lifecycle, a server
// version gate, and connection-scoped caching.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	ihttp "github.com/casperdev-io/jss-client/internal/http"
	"github.com/casperdev-io/jss-client/internal/transport"
	"github.com/casperdev-io/jss-client/pkg/jss"
)

// MinServerVersion is the lowest server version this library supports.
// Connecting to anything older fails, even when the credentials are valid.
const MinServerVersion = "9.4.0"

// bootstrapPath is a low-privilege endpoint every API account can read.
// The bootstrap GET both confirms the credentials and reports the server
// version.
const bootstrapPath = "jssuser"

var minVersion = semver.MustParse(MinServerVersion)

// Connection implements jss.Connection.
type Connection struct {
	mu sync.Mutex

	name          string
	settings      *transport.Settings
	httpClient    *ihttp.Client
	connected     bool
	serverVersion string
	lastResponse  *jss.Response
	lists         *jss.ListCache
	sources       []transport.Source
	logger        jss.Logger
}

var _ jss.Connection = (*Connection)(nil)

// New returns an unconnected Connection.
func New() *Connection {
	return &Connection{
		lists:   jss.NewListCache(),
		sources: transport.DefaultSources(),
	}
}

// SetConfigSources replaces the configuration source chain consulted by
// Connect. Used by tests and by embedders with non-standard file locations.
func (c *Connection) SetConfigSources(sources ...transport.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sources = sources
}

// Connect implements jss.Connection.Connect.
func (c *Connection) Connect(ctx context.Context, cfg *jss.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Connecting is always a fresh start.
	c.lists.FlushAll()
	c.connected = false
	c.serverVersion = ""

	settings, err := transport.Resolve(cfg, c.sources...)
	if err != nil {
		return err
	}

	password, err := transport.ResolvePassword(cfg)
	if err != nil {
		return err
	}

	c.logger = cfg.Logger
	c.settings = settings
	c.httpClient = c.buildHTTPClient(cfg, settings, password)

	version, err := c.bootstrap(ctx)
	if err != nil {
		return err
	}

	parsed, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: server reported unparseable version %q", jss.ErrUnsupportedServer, version)
	}

	if parsed.LessThan(minVersion) {
		return fmt.Errorf("%w: server is version %s, minimum supported is %s",
			jss.ErrUnsupportedServer, version, MinServerVersion)
	}

	c.serverVersion = version
	c.connected = true

	c.name = cfg.Name
	if c.name == "" {
		c.name = fmt.Sprintf("%s@%s:%d", settings.User, settings.Host, settings.Port)
	}

	if c.logger != nil {
		c.logger.Info("connected", map[string]interface{}{
			"server":  settings.Host,
			"version": version,
		})
	}

	return nil
}

func (c *Connection) buildHTTPClient(cfg *jss.Config, settings *transport.Settings, password string) *ihttp.Client {
	opts := []ihttp.Option{
		ihttp.WithTimeouts(settings.OpenTimeout, settings.Timeout),
		ihttp.WithTLSVerification(settings.VerifyCert),
	}

	if cfg.Logger != nil {
		opts = append(opts, ihttp.WithLogger(cfg.Logger))
	}

	if cfg.Debug {
		opts = append(opts, ihttp.WithDebug(true))
	}

	if cfg.UserAgent != "" {
		opts = append(opts, ihttp.WithUserAgent(cfg.UserAgent))
	}

	if cfg.RetryMax > 0 {
		waitMin := cfg.RetryWaitMin
		if waitMin == 0 {
			waitMin = time.Second
		}

		waitMax := cfg.RetryWaitMax
		if waitMax == 0 {
			waitMax = 30 * time.Second
		}

		opts = append(opts, ihttp.WithRetryConfig(cfg.RetryMax, waitMin, waitMax))
	}

	return ihttp.NewClient(settings.BaseURL, settings.User, password, opts...)
}

// bootstrap performs the authenticated version-check call. A 401 here means
// the credentials themselves were rejected, which is reported distinctly
// from an authorization failure on a normal call.
func (c *Connection) bootstrap(ctx context.Context) (string, error) {
	resp, err := c.httpClient.Get(ctx, bootstrapPath, "application/json")
	if resp != nil {
		c.lastResponse = resp
	}

	if err != nil {
		if errors.Is(err, jss.ErrAuthorization) {
			return "", fmt.Errorf("%w (server %s)", jss.ErrAuthentication, c.settings.Host)
		}

		return "", err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", fmt.Errorf("parsing server info response: %w", err)
	}

	version := versionFromPayload(payload)
	if version == "" {
		return "", fmt.Errorf("%w: server info response carried no version", jss.ErrUnsupportedServer)
	}

	return version, nil
}

func versionFromPayload(payload map[string]interface{}) string {
	if user, ok := payload["user"].(map[string]interface{}); ok {
		if version, ok := user["version"].(string); ok {
			return version
		}
	}

	version, _ := payload["version"].(string)

	return version
}

// Disconnect implements jss.Connection.Disconnect. Idempotent.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected && c.httpClient == nil {
		return
	}

	c.httpClient = nil
	c.settings = nil
	c.serverVersion = ""
	c.lastResponse = nil
	c.connected = false
	c.lists.FlushAll()
}

// Connected implements jss.Connection.Connected.
func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// Name implements jss.Connection.Name.
func (c *Connection) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.name == "" {
		return "unconnected"
	}

	return c.name
}

// User implements jss.Connection.User.
func (c *Connection) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settings == nil {
		return ""
	}

	return c.settings.User
}

// Host implements jss.Connection.Host.
func (c *Connection) Host() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settings == nil {
		return ""
	}

	return c.settings.Host
}

// Port implements jss.Connection.Port.
func (c *Connection) Port() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settings == nil {
		return 0
	}

	return c.settings.Port
}

// BaseURL implements jss.Connection.BaseURL.
func (c *Connection) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settings == nil {
		return ""
	}

	return c.settings.BaseURL
}

// ServerVersion implements jss.Connection.ServerVersion.
func (c *Connection) ServerVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.serverVersion
}

// LastResponse implements jss.Connection.LastResponse.
func (c *Connection) LastResponse() *jss.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastResponse
}

// Lists implements jss.Connection.Lists.
func (c *Connection) Lists() *jss.ListCache {
	return c.lists
}

// Get implements jss.Connection.Get.
func (c *Connection) Get(ctx context.Context, path string, format jss.DataFormat) (*jss.Result, error) {
	client, err := c.session()
	if err != nil {
		return nil, err
	}

	accept := "application/json"
	if format == jss.FormatXML {
		accept = "text/xml"
	}

	resp, err := client.Get(ctx, path, accept)
	c.retain(resp)

	if err != nil {
		return nil, err
	}

	if format == jss.FormatXML {
		return &jss.Result{XML: string(resp.Body)}, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("parsing response for %s: %w", path, err)
	}

	return &jss.Result{Data: data}, nil
}

// Put implements jss.Connection.Put.
func (c *Connection) Put(ctx context.Context, path, payload string) (string, error) {
	client, err := c.session()
	if err != nil {
		return "", err
	}

	resp, err := client.Put(ctx, path, payload)
	c.retain(resp)

	if err != nil {
		return "", err
	}

	return string(resp.Body), nil
}

// Post implements jss.Connection.Post.
func (c *Connection) Post(ctx context.Context, path, payload string) (string, error) {
	client, err := c.session()
	if err != nil {
		return "", err
	}

	resp, err := client.Post(ctx, path, payload)
	c.retain(resp)

	if err != nil {
		return "", err
	}

	return string(resp.Body), nil
}

// Delete implements jss.Connection.Delete.
func (c *Connection) Delete(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: a resource path is required for delete", jss.ErrMissingData)
	}

	client, err := c.session()
	if err != nil {
		return "", err
	}

	resp, err := client.Delete(ctx, path)
	c.retain(resp)

	if err != nil {
		return "", err
	}

	return string(resp.Body), nil
}

// ExtensionAttributes implements jss.Connection.ExtensionAttributes.
func (c *Connection) ExtensionAttributes(ctx context.Context, kind jss.ExtendableKind, refresh bool) ([]jss.ListItem, error) {
	if !refresh {
		if defs := c.lists.ExtAttrs(kind); defs != nil {
			return defs, nil
		}
	}

	attrType, err := jss.ExtAttrType(kind)
	if err != nil {
		return nil, err
	}

	res, err := c.Get(ctx, attrType.ResourcePath(), jss.FormatJSON)
	if err != nil {
		return nil, err
	}

	raw, ok := res.Data[attrType.ListKey()].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: definition response missing %q collection", jss.ErrInvalidData, attrType.ListKey())
	}

	defs := make([]jss.ListItem, 0, len(raw))

	for _, entry := range raw {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: malformed entry in %q collection", jss.ErrInvalidData, attrType.ListKey())
		}

		defs = append(defs, jss.ListItem(fields))
	}

	c.lists.StoreExtAttrs(kind, defs)

	return defs, nil
}

// FlushCache implements jss.Connection.FlushCache.
func (c *Connection) FlushCache() {
	c.lists.FlushAll()
}

// FlushTypeCache implements jss.Connection.FlushTypeCache.
func (c *Connection) FlushTypeCache(t jss.ResourceType) {
	c.lists.FlushType(t)
}

// FlushExtAttrCache implements jss.Connection.FlushExtAttrCache.
func (c *Connection) FlushExtAttrCache(kind jss.ExtendableKind) {
	c.lists.FlushExtAttrs(kind)
}

// SetTimeout implements jss.Connection.SetTimeout.
func (c *Connection) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settings != nil {
		c.settings.Timeout = d
	}

	if c.httpClient != nil {
		c.httpClient.SetTimeout(d)
	}
}

// SetOpenTimeout implements jss.Connection.SetOpenTimeout.
func (c *Connection) SetOpenTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settings != nil {
		c.settings.OpenTimeout = d
	}

	if c.httpClient != nil {
		c.httpClient.SetOpenTimeout(d)
	}
}

// session returns the live HTTP client, or ErrNotConnected.
func (c *Connection) session() (*ihttp.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.httpClient == nil {
		return nil, jss.ErrNotConnected
	}

	return c.httpClient, nil
}

// retain records the most recent raw response, successful or not.
func (c *Connection) retain(resp *jss.Response) {
	if resp == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastResponse = resp
}
