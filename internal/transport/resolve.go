// Package transport resolves partially-specified connection options into a
// fully-determined set of transport settings, consulting the caller's
// explicit values, persisted configuration, the local management agent's own
// configuration, and module defaults, in that order.
package transport

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/casperdev-io/jss-client/pkg/jss"
)

const (
	// CloudDomainSuffix marks hosts on the vendor's cloud hosting, which
	// listens on the standard HTTPS port rather than the on-prem default.
	CloudDomainSuffix = ".jamfcloud.com"

	// CloudPort is the default port for cloud-hosted servers.
	CloudPort = 443

	// OnPremSSLPort is the default SSL port for on-prem servers.
	OnPremSSLPort = 8443

	// DefaultTimeout is the default total request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultOpenTimeout is the default connection-establishment timeout.
	DefaultOpenTimeout = 60 * time.Second
)

// sslPorts are the ports on which SSL is assumed when the caller did not
// state a preference.
var sslPorts = map[int]bool{
	CloudPort:     true,
	OnPremSSLPort: true,
}

// Values is a partially-filled settings fragment contributed by one
// configuration source. Zero values mean "no opinion".
type Values struct {
	Server      string
	Port        int
	ServerPath  string
	User        string
	Protocol    string
	VerifyCert  *bool
	OpenTimeout time.Duration
	Timeout     time.Duration
}

// Source supplies configuration values from somewhere outside the caller's
// explicit arguments.
type Source interface {
	// Values returns this source's settings fragment. A source that is
	// not present on the host returns an empty fragment, not an error.
	Values() (*Values, error)
}

// Settings is a fully-resolved set of connection parameters.
type Settings struct {
	Host        string
	Port        int
	ServerPath  string
	User        string
	UseSSL      bool
	VerifyCert  bool
	Protocol    string
	OpenTimeout time.Duration
	Timeout     time.Duration
	BaseURL     string
}

// DefaultSources returns the standard source chain: persisted configuration
// first, then the local management agent.
func DefaultSources() []Source {
	return []Source{NewFileSource(""), NewAgentSource("")}
}

// Resolve produces fully-determined settings from cfg and the given sources.
// Per-field precedence is explicit > sources in order > module default. Port
// selection special-cases the cloud domain: with no port requested anywhere,
// cloud-hosted servers get 443 and everything else gets 8443.
//
// Resolve fails with ErrMissingConfiguration when no source supplies a
// server or a user. Password acquisition is separate; see ResolvePassword.
func Resolve(cfg *jss.Config, sources ...Source) (*Settings, error) {
	merged := Values{
		Server:      cfg.Server,
		Port:        cfg.Port,
		ServerPath:  cfg.ServerPath,
		User:        cfg.User,
		VerifyCert:  cfg.VerifyCert,
		OpenTimeout: cfg.OpenTimeout,
		Timeout:     cfg.Timeout,
	}

	for _, source := range sources {
		values, err := source.Values()
		if err != nil {
			return nil, fmt.Errorf("reading configuration source: %w", err)
		}

		fillBlanks(&merged, values)
	}

	if merged.Server == "" {
		return nil, fmt.Errorf("%w: no server name available from any source", jss.ErrMissingConfiguration)
	}

	if merged.User == "" {
		return nil, fmt.Errorf("%w: no API username available from any source", jss.ErrMissingConfiguration)
	}

	settings := &Settings{
		Host:       merged.Server,
		ServerPath: strings.Trim(merged.ServerPath, "/"),
		User:       merged.User,
		Port:       merged.Port,
	}

	if settings.Port == 0 {
		if strings.HasSuffix(strings.ToLower(settings.Host), CloudDomainSuffix) {
			settings.Port = CloudPort
		} else {
			settings.Port = OnPremSSLPort
		}
	}

	if cfg.UseSSL != nil {
		settings.UseSSL = *cfg.UseSSL
	} else {
		settings.UseSSL = sslPorts[settings.Port]
	}

	settings.VerifyCert = true
	if merged.VerifyCert != nil {
		settings.VerifyCert = *merged.VerifyCert
	}

	settings.OpenTimeout = merged.OpenTimeout
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = DefaultOpenTimeout
	}

	settings.Timeout = merged.Timeout
	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}

	settings.Protocol = "http"
	if settings.UseSSL {
		settings.Protocol = "https"
	}

	settings.BaseURL = buildBaseURL(settings)

	return settings, nil
}

func buildBaseURL(s *Settings) string {
	base := url.URL{
		Scheme: s.Protocol,
		Host:   fmt.Sprintf("%s:%d", s.Host, s.Port),
		Path:   "/JSSResource",
	}

	if s.ServerPath != "" {
		base.Path = "/" + s.ServerPath + "/JSSResource"
	}

	return base.String()
}

func fillBlanks(dst *Values, src *Values) {
	if src == nil {
		return
	}

	if dst.Server == "" {
		dst.Server = src.Server
	}

	if dst.Port == 0 {
		dst.Port = src.Port
	}

	if dst.ServerPath == "" {
		dst.ServerPath = src.ServerPath
	}

	if dst.User == "" {
		dst.User = src.User
	}

	if dst.Protocol == "" {
		dst.Protocol = src.Protocol
	}

	if dst.VerifyCert == nil {
		dst.VerifyCert = src.VerifyCert
	}

	if dst.OpenTimeout == 0 {
		dst.OpenTimeout = src.OpenTimeout
	}

	if dst.Timeout == 0 {
		dst.Timeout = src.Timeout
	}
}
