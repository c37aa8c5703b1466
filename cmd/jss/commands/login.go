package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/casperdev-io/jss-client/pkg/jssclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		server   string
		port     int
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a JSS",
		Long:  "Authenticate against a JSS and persist the connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = viper.GetString("server")
			}

			if server == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Server hostname: ")
				server, _ = reader.ReadString('\n')
				server = strings.TrimSpace(server)
			}

			if server == "" {
				return fmt.Errorf("server hostname is required")
			}

			if username == "" {
				username = viper.GetString("user")
			}

			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if password == "" {
				fmt.Print("Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
				fmt.Println()
			}

			if port == 0 {
				port = viper.GetInt("port")
			}

			config := &jss.Config{
				Server:   server,
				Port:     port,
				User:     username,
				Password: password,
			}

			if viper.GetBool("no-verify-cert") {
				verify := false
				config.VerifyCert = &verify
			}

			if viper.GetBool("verbose") {
				config.Debug = true
				config.Logger = jss.NewZerologLogger(os.Stderr)
			}

			conn, err := jssclient.CreateAndActivate(context.Background(), config)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}

			// Persist the settings that worked, never the password.
			persisted := loadConfig()
			persisted.Server = conn.Host()
			persisted.Port = conn.Port()
			persisted.User = conn.User()

			if err := saveConfig(persisted); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s\n", conn.BaseURL())
			fmt.Printf("Server version: %s\n", conn.ServerVersion())

			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "JSS server hostname")
	cmd.Flags().IntVar(&port, "port", 0, "JSS server port")
	cmd.Flags().StringVarP(&username, "user", "u", "", "API account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "API account password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the JSS",
		Long:  "Disconnect the active connection and restore the default one",
		RunE: func(cmd *cobra.Command, args []string) error {
			jssclient.Active().Disconnect()
			jssclient.RestoreDefault()

			fmt.Println("Successfully logged out")

			return nil
		},
	}
}
