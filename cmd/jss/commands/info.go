package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// connectionInfo is the serializable view of the active connection.
type connectionInfo struct {
	Name          string `json:"name" yaml:"name"`
	User          string `json:"user" yaml:"user"`
	Host          string `json:"host" yaml:"host"`
	Port          int    `json:"port" yaml:"port"`
	BaseURL       string `json:"base_url" yaml:"base_url"`
	ServerVersion string `json:"server_version" yaml:"server_version"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display connection information",
		Long:  "Display information about the active JSS connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			info := connectionInfo{
				Name:          conn.Name(),
				User:          conn.User(),
				Host:          conn.Host(),
				Port:          conn.Port(),
				BaseURL:       conn.BaseURL(),
				ServerVersion: conn.ServerVersion(),
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(info)
			case OutputFormatYAML:
				return StandardYAMLRenderer(info)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("Name", info.Name)
				_ = table.Append("User", info.User)
				_ = table.Append("Host", info.Host)
				_ = table.Append("Port", fmt.Sprintf("%d", info.Port))
				_ = table.Append("Base URL", info.BaseURL)
				_ = table.Append("Server Version", info.ServerVersion)

				_ = table.Render()
			}

			return nil
		},
	}
}
