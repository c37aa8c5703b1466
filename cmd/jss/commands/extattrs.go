package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewExtAttrsCommand creates the extension-attributes command.
func NewExtAttrsCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:     "extattrs KIND",
		Aliases: []string{"extension-attributes"},
		Short:   "List extension attribute definitions",
		Long:    "List the extension attribute definitions for one kind (computers, mobile_devices, users)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtAttrsCommand(args[0], refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached definitions and fetch fresh")

	return cmd
}

func runExtAttrsCommand(kindName string, refresh bool) error {
	kind, err := resolveKind(kindName)
	if err != nil {
		return err
	}

	ctx := context.Background()

	conn, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	attrs, err := conn.ExtensionAttributes(ctx, kind, refresh)
	if err != nil {
		return fmt.Errorf("failed to list extension attributes for %s: %w", kind, err)
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(attrs)
	case OutputFormatYAML:
		return StandardYAMLRenderer(attrs)
	default:
		return renderExtAttrTable(kind, attrs)
	}
}

func resolveKind(name string) (jss.ExtendableKind, error) {
	switch name {
	case "computers", "computer":
		return jss.ExtendableComputers, nil
	case "mobile_devices", "mobiledevices", "mobile_device":
		return jss.ExtendableMobileDevices, nil
	case "users", "user":
		return jss.ExtendableUsers, nil
	default:
		return "", fmt.Errorf("unknown extendable kind %q (known: computers, mobile_devices, users)", name)
	}
}

func renderExtAttrTable(kind jss.ExtendableKind, attrs []jss.ListItem) error {
	if len(attrs) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "No extension attributes defined for %s\n", kind)

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name")

	for _, attr := range attrs {
		_ = table.Append(strconv.Itoa(attr.ID()), attr.Name())
	}

	_ = table.Render()

	return nil
}
