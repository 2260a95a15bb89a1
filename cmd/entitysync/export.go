package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entitysync/internal/export"
)

func exportCmd() *cobra.Command {
	var out string
	var stdout bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the engine import file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(out, stdout)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write here instead of the configured export path")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the document instead of writing a file")
	return cmd
}

func runExport(out string, stdout bool) error {
	ctx := context.Background()
	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if stdout {
		data, err := export.Encode(ws.Document(), ws.Config().Export.Indent)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	path := ws.ExportPath()
	var n int
	if out != "" {
		path = out
		n, err = ws.ExportTo(ctx, out)
	} else {
		n, err = ws.Export(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported %d objects to %s.\n", n, path)
	return nil
}
