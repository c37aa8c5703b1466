package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list TYPE",
		Short: "List resources of a type",
		Long:  "List all resources of the given type, served from the connection cache when warm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListCommand(args[0], refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached list and fetch fresh")

	return cmd
}

func runListCommand(typeName string, refresh bool) error {
	rtype, err := ResolveResourceType(typeName)
	if err != nil {
		return err
	}

	ctx := context.Background()

	conn, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	items, err := jss.All(ctx, conn, rtype, refresh)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", rtype.ResourcePath(), err)
	}

	return outputListItems(rtype, items)
}

func outputListItems(rtype jss.ResourceType, items []jss.ListItem) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(items)
	case OutputFormatYAML:
		return StandardYAMLRenderer(items)
	default:
		return renderListTable(rtype, items)
	}
}

func renderListTable(rtype jss.ResourceType, items []jss.ListItem) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "No %s found\n", rtype.ListKey())

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name")

	for _, item := range items {
		_ = table.Append(strconv.Itoa(item.ID()), item.Name())
	}

	_ = table.Render()

	return nil
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TYPE NAME_OR_ID",
		Short: "Get one resource",
		Long:  "Fetch one resource by name or numeric id and display its attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetCommand(args[0], args[1])
		},
	}
}

func runGetCommand(typeName, nameOrID string) error {
	rtype, err := ResolveResourceType(typeName)
	if err != nil {
		return err
	}

	ctx := context.Background()

	conn, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	obj, err := jss.FetchObject(ctx, conn, rtype, lookupFor(nameOrID))
	if err != nil {
		return fmt.Errorf("failed to fetch %s %q: %w", rtype.ObjectKey(), nameOrID, err)
	}

	return outputObject(obj)
}

// lookupFor treats an all-digit argument as an id and anything else as a
// name.
func lookupFor(nameOrID string) map[string]interface{} {
	if id, err := strconv.Atoi(nameOrID); err == nil {
		return map[string]interface{}{"id": id}
	}

	return map[string]interface{}{"name": nameOrID}
}

func outputObject(obj *jss.Object) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(obj.Data())
	case OutputFormatYAML:
		return StandardYAMLRenderer(obj.Data())
	default:
		return renderObjectTable(obj)
	}
}

// renderObjectTable prints the scalar attributes of the flattened snapshot,
// sorted for stable output. Nested sections are summarized by key only.
func renderObjectTable(obj *jss.Object) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Attribute", "Value")

	data := obj.Data()

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		switch value := data[key].(type) {
		case map[string]interface{}:
			_ = table.Append(key, fmt.Sprintf("<%d nested fields>", len(value)))
		case []interface{}:
			_ = table.Append(key, fmt.Sprintf("<%d entries>", len(value)))
		default:
			_ = table.Append(key, fmt.Sprintf("%v", value))
		}
	}

	_ = table.Render()

	return nil
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "create TYPE NAME",
		Short: "Create a resource",
		Long:  "Create a new resource with the given name and optional --field key=value attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateCommand(args[0], args[1], fields)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "attribute to set, key=value (repeatable)")

	return cmd
}

func runCreateCommand(typeName, name string, fields []string) error {
	rtype, err := ResolveResourceType(typeName)
	if err != nil {
		return err
	}

	ctx := context.Background()

	conn, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	obj, err := jss.NewObject(ctx, conn, rtype, name)
	if err != nil {
		return fmt.Errorf("failed to prepare %s %q: %w", rtype.ObjectKey(), name, err)
	}

	for _, field := range fields {
		key, value, err := splitField(field)
		if err != nil {
			return err
		}

		obj.Set(key, value)
	}

	id, err := obj.Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to create %s %q: %w", rtype.ObjectKey(), name, err)
	}

	fmt.Printf("Created %s %q with id %d\n", rtype.ObjectKey(), name, id)

	return nil
}

func splitField(field string) (string, string, error) {
	for i := 0; i < len(field); i++ {
		if field[i] == '=' {
			if i == 0 {
				break
			}

			return field[:i], field[i+1:], nil
		}
	}

	return "", "", fmt.Errorf("invalid --field %q, expected key=value", field)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete TYPE NAME_OR_ID",
		Short: "Delete a resource",
		Long:  "Delete one resource by name or numeric id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteCommand(args[0], args[1], force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "delete without confirmation")

	return cmd
}

func runDeleteCommand(typeName, nameOrID string, force bool) error {
	rtype, err := ResolveResourceType(typeName)
	if err != nil {
		return err
	}

	ctx := context.Background()

	conn, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	obj, err := jss.FetchObject(ctx, conn, rtype, lookupFor(nameOrID))
	if err != nil {
		return fmt.Errorf("failed to fetch %s %q: %w", rtype.ObjectKey(), nameOrID, err)
	}

	if !force {
		fmt.Printf("Really delete %s %q (id %d)? [y/N]: ", rtype.ObjectKey(), obj.Name(), obj.ID())

		var answer string
		_, _ = fmt.Scanln(&answer)

		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Println("Aborted")

			return nil
		}
	}

	name, id := obj.Name(), obj.ID()

	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s %q: %w", rtype.ObjectKey(), name, err)
	}

	fmt.Printf("Deleted %s %q (id %d)\n", rtype.ObjectKey(), name, id)

	return nil
}
