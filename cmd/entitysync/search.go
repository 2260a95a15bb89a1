package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entitysync/internal/search"
)

func searchCmd() *cobra.Command {
	var class, mode, variable, op, text string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Select objects by class or by comparing a variable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(class, mode, variable, op, text)
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "Class to search (required)")
	cmd.Flags().StringVar(&mode, "mode", string(search.ByClass), "class or variable")
	cmd.Flags().StringVar(&variable, "variable", "", "Variable to compare in variable mode")
	cmd.Flags().StringVar(&op, "op", string(search.Equal), "Comparison: <, <=, ==, >, >=")
	cmd.Flags().StringVar(&text, "value", "", "Value to compare against")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

func runSearch(class, modeName, variable, op, text string) error {
	mode, err := search.ParseMode(modeName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	matches, err := ws.Search(ctx, class, mode, variable, search.Operator(op), text)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No objects found.")
		return nil
	}
	for _, name := range matches {
		fmt.Fprintln(os.Stdout, name)
	}
	return nil
}
