package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entitysync/internal/ingest"
)

func ingestCmd() *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "ingest [paths...]",
		Short: "Apply scene manifests to the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(append(paths, args...))
		},
	}
	cmd.Flags().StringSliceVar(&paths, "path", nil, "Manifest file or directory (defaults to ingest.paths)")
	return cmd
}

func runIngest(paths []string) error {
	ctx := context.Background()

	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	cfg := ws.Config()
	if len(paths) == 0 {
		paths = cfg.Ingest.Paths
	}
	if len(paths) == 0 {
		return fmt.Errorf("no manifest paths given and ingest.paths is empty")
	}

	result, err := ingest.Run(ctx, ws, ingest.Options{Paths: paths, Exclude: cfg.Ingest.Exclude})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Ingestion complete.")
	fmt.Fprintf(os.Stdout, "  Files parsed:    %d\n", result.FilesParsed)
	fmt.Fprintf(os.Stdout, "  Files skipped:   %d\n", result.FilesSkipped)
	fmt.Fprintf(os.Stdout, "  Objects added:   %d\n", result.ObjectsAdded)
	fmt.Fprintf(os.Stdout, "  Objects updated: %d\n", result.ObjectsUpdated)
	fmt.Fprintf(os.Stdout, "  Values set:      %d\n", result.ValuesSet)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("ingestion completed with errors")
	}

	return nil
}
