package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func objectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "object",
		Short: "Manage scene objects",
	}
	cmd.AddCommand(objectAddCmd())
	cmd.AddCommand(objectRemoveCmd())
	cmd.AddCommand(objectListCmd())
	cmd.AddCommand(objectShowCmd())
	cmd.AddCommand(objectClassCmd())
	cmd.AddCommand(objectSetCmd())
	return cmd
}

func objectAddCmd() *cobra.Command {
	var class string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an object to the scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ws, _, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close(ctx)

			if err := ws.AddObject(ctx, args[0]); err != nil {
				return err
			}
			if class != "" {
				return ws.SetClass(ctx, args[0], class)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "Class to assign")
	return cmd
}

func objectRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an object from the scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ws, _, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close(ctx)
			return ws.RemoveObject(ctx, args[0])
		},
	}
}

func objectListCmd() *cobra.Command {
	var class string
	var selected bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scene objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObjectList(class, selected)
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "Class to filter")
	cmd.Flags().BoolVar(&selected, "selected", false, "Only selected objects")
	return cmd
}

func runObjectList(class string, selected bool) error {
	ctx := context.Background()
	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	objects := ws.Objects()
	if selected {
		objects = ws.Selected()
	}

	found := 0
	for _, obj := range objects {
		if class != "" && obj.Entity.Class != class {
			continue
		}
		found++
		marker := " "
		if obj.Selected {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %s (%s)\n", marker, obj.Name, obj.Entity.Class)
	}
	if found == 0 {
		fmt.Fprintln(os.Stdout, "No objects found.")
	}
	return nil
}

func objectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print an object's class and property values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ws, _, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close(ctx)

			obj, err := ws.Object(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s (%s)\n", obj.Name, obj.Entity.Class)
			for _, prop := range obj.Entity.Properties {
				fmt.Fprintf(os.Stdout, "  %s: %s = %s\n", prop.Name, prop.Type, prop.Value.Format())
			}
			return nil
		},
	}
}

func objectClassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "class <name> <class>",
		Short: "Assign a class, resetting the object to the class defaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ws, _, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close(ctx)
			return ws.SetClass(ctx, args[0], args[1])
		},
	}
}

func objectSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <variable> <value>",
		Short: "Set one property value",
		Long:  "Set one property value. The value is parsed into the property type: 7, 1.5, true, or \"1, 2, 3\" for vectors.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ws, _, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close(ctx)
			return ws.SetProperty(ctx, args[0], args[1], args[2])
		},
	}
}
