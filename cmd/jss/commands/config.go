package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the persisted CLI configuration.
type Config struct {
	Server       string `yaml:"server,omitempty"`
	Port         int    `yaml:"port,omitempty"`
	User         string `yaml:"user,omitempty"`
	NoVerifyCert bool   `yaml:"no-verify-cert,omitempty"`
	Output       string `yaml:"output,omitempty"`
}

const (
	configDirPerm  = 0o755
	configFilePerm = 0o600
)

// loadConfig builds the configuration from whatever viper has read, which
// covers the config file, environment variables, and bound flags.
func loadConfig() *Config {
	return &Config{
		Server:       viper.GetString("server"),
		Port:         viper.GetInt("port"),
		User:         viper.GetString("user"),
		NoVerifyCert: viper.GetBool("no-verify-cert"),
		Output:       viper.GetString("output"),
	}
}

// saveConfig writes the configuration back to the file viper loaded, or to
// the default location when no file was used.
func saveConfig(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".jss")
		if err := os.MkdirAll(configDir, configDirPerm); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(configFile, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and change the persisted CLI configuration",
	}

	cmd.AddCommand(newConfigViewCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return StandardYAMLRenderer(loadConfig())
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set and persist one configuration value (server, port, user, output)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			switch key {
			case "server", "port", "user", "output", "no-verify-cert":
				viper.Set(key, value)
			default:
				return fmt.Errorf("unknown configuration key %q", key)
			}

			if err := saveConfig(loadConfig()); err != nil {
				return err
			}

			fmt.Printf("Set %s to %s\n", key, value)

			return nil
		},
	}
}
