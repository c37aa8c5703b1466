// Package commands implements the jss CLI subcommands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/casperdev-io/jss-client/pkg/jssclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	yamlIndent = 2
)

// knownTypeNames lists the type names accepted on the command line.
var knownTypeNames = []string{
	"categories", "computers", "mobiledevices", "policies", "users",
	"computerextensionattributes", "directorybindings",
}

// ResolveResourceType maps a command-line type name to its descriptor.
// Singular and plural spellings are both accepted.
func ResolveResourceType(name string) (jss.ResourceType, error) {
	switch strings.ToLower(name) {
	case "category", "categories":
		return jss.TypeCategory, nil
	case "computer", "computers":
		return jss.TypeComputer, nil
	case "mobiledevice", "mobiledevices":
		return jss.TypeMobileDevice, nil
	case "policy", "policies":
		return jss.TypePolicy, nil
	case "user", "users":
		return jss.TypeUser, nil
	case "computerextensionattribute", "computerextensionattributes":
		return jss.TypeComputerExtensionAttribute, nil
	case "directorybinding", "directorybindings":
		return jss.TypeDirectoryBinding, nil
	default:
		return nil, fmt.Errorf("unknown resource type %q (known: %s)", name, strings.Join(knownTypeNames, ", "))
	}
}

// CreateClient returns the active connection, connecting it first when
// necessary using the settings bound in viper. The password comes from the
// JSS_PASSWORD environment variable when set, otherwise it is prompted for.
func CreateClient(ctx context.Context) (jss.Connection, error) {
	conn := jssclient.Active()
	if conn.Connected() {
		return conn, nil
	}

	config := configFromViper()

	conn, err := jssclient.CreateAndActivate(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to JSS: %w", err)
	}

	return conn, nil
}

func configFromViper() *jss.Config {
	config := &jss.Config{
		Server: viper.GetString("server"),
		Port:   viper.GetInt("port"),
		User:   viper.GetString("user"),
		Debug:  viper.GetBool("verbose"),
	}

	if password := viper.GetString("password"); password != "" {
		config.Password = password
	} else {
		config.PromptForPassword = true
	}

	if viper.GetBool("no-verify-cert") {
		verify := false
		config.VerifyCert = &verify
	}

	if config.Debug {
		config.Logger = jss.NewZerologLogger(os.Stderr)
	}

	return config
}

// StandardJSONRenderer writes data to stdout as indented JSON.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data to stdout as YAML.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(yamlIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}
