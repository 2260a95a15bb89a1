package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"entitysync/internal/logging"
	"entitysync/internal/mcp"
	"entitysync/internal/watch"
)

func serveCmd() *cobra.Command {
	var watchTemplate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(watchTemplate)
		},
	}
	cmd.Flags().BoolVar(&watchTemplate, "watch", false, "Also reload the template when its file changes")
	return cmd
}

func runServe(watchTemplate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, log, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(context.Background())

	if watchTemplate {
		w := watch.New(ws, ws.Config().Watch.Debounce, logging.Component(log, "watch"))
		go func() {
			if err := w.Run(ctx); err != nil {
				log.WithError(err).Error("template watcher stopped")
			}
		}()
	}

	server := mcp.NewServer(ws, version, logging.Component(log, "mcp"))
	return server.Run(ctx, &sdk.StdioTransport{})
}
