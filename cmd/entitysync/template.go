package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entitysync/internal/config"
	"entitysync/internal/reconcile"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Load or inspect the entity template",
	}
	cmd.AddCommand(templateLoadCmd())
	cmd.AddCommand(templateShowCmd())
	return cmd
}

func templateLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Re-read the template file and reconcile every object",
		Args:  cobra.NoArgs,
		RunE:  runTemplateLoad,
	}
}

func runTemplateLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	report, err := ws.ReloadTemplate(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Loaded %d classes from %s.\n", len(ws.Template().Keys())-1, ws.TemplatePath())
	fmt.Fprintf(os.Stdout, "  Rebuilt:    %d\n", report.Count(reconcile.Rebuilt))
	fmt.Fprintf(os.Stdout, "  Downgraded: %d\n", report.Count(reconcile.Downgraded))
	for _, res := range report.Objects {
		if res.Outcome == reconcile.Downgraded {
			fmt.Fprintf(os.Stdout, "  - %s: class %s removed, reset to None\n", res.Object, res.Class)
		}
	}
	return nil
}

func templateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [class]",
		Short: "Print the template classes and their variables",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTemplateShow,
	}
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	tmpl := ws.Template()
	classes := tmpl.Classes()
	if len(args) == 1 {
		class, err := tmpl.Class(args[0])
		if err != nil {
			return err
		}
		classes = []*config.ClassDefinition{class}
	}

	for _, class := range classes {
		if class.UID != "" {
			fmt.Fprintf(os.Stdout, "%s (%s)\n", class.Name, class.UID)
		} else {
			fmt.Fprintln(os.Stdout, class.Name)
		}
		for _, v := range class.Variables {
			line := fmt.Sprintf("  %s: %s = %s", v.Name, v.Type, v.Default.Format())
			if len(v.Options) > 0 {
				line += fmt.Sprintf(" %v", v.Options)
			}
			if v.Description != "" {
				line += "  # " + v.Description
			}
			fmt.Fprintln(os.Stdout, line)
		}
	}
	return nil
}
