package transport

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// FileSource reads the persisted client configuration. Key names follow the
// historical conf-file vocabulary (api_server_name, api_server_port, ...),
// so existing deployments keep working.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading from path, or from the standard
// locations (/etc/jss and ~/.jss) when path is empty.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Values implements Source. A missing configuration file is not an error;
// it simply contributes nothing.
func (s *FileSource) Values() (*Values, error) {
	v := viper.New()

	if s.path != "" {
		v.SetConfigFile(s.path)
	} else {
		v.SetConfigName("jss_client")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/jss")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.jss")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return &Values{}, nil
		}

		return nil, fmt.Errorf("reading client configuration: %w", err)
	}

	values := &Values{
		Server:      v.GetString("api_server_name"),
		Port:        v.GetInt("api_server_port"),
		ServerPath:  v.GetString("api_server_path"),
		User:        v.GetString("api_username"),
		OpenTimeout: time.Duration(v.GetInt("api_timeout_open")) * time.Second,
		Timeout:     time.Duration(v.GetInt("api_timeout")) * time.Second,
	}

	if v.IsSet("api_verify_cert") {
		verify := v.GetBool("api_verify_cert")
		values.VerifyCert = &verify
	}

	return values, nil
}

// AgentSource reads the local management agent's own configuration when the
// host is enrolled as a managed client. The agent records the server it
// enrolled against as a full URL.
type AgentSource struct {
	path string
}

// agentConfigPath is where the management agent keeps its settings on an
// enrolled host.
const agentConfigPath = "/etc/jamf/jamf.conf"

// NewAgentSource returns a source reading from path, or from the standard
// agent location when path is empty.
func NewAgentSource(path string) *AgentSource {
	if path == "" {
		path = agentConfigPath
	}

	return &AgentSource{path: path}
}

var agentURLPattern = regexp.MustCompile(`(?m)^\s*jss_url\s*[=:]\s*(\S+)`)

// Values implements Source. Hosts that are not enrolled contribute nothing.
func (s *AgentSource) Values() (*Values, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Values{}, nil
		}

		return nil, fmt.Errorf("reading agent configuration: %w", err)
	}

	match := agentURLPattern.FindSubmatch(raw)
	if match == nil {
		return &Values{}, nil
	}

	return parseAgentURL(string(match[1])), nil
}

var agentURLParts = regexp.MustCompile(`^(https?)://([^:/]+)(?::(\d+))?`)

func parseAgentURL(raw string) *Values {
	parts := agentURLParts.FindStringSubmatch(raw)
	if parts == nil {
		return &Values{}
	}

	values := &Values{
		Protocol: parts[1],
		Server:   parts[2],
	}

	if parts[3] != "" {
		if port, err := strconv.Atoi(parts[3]); err == nil {
			values.Port = port
		}
	}

	return values
}
