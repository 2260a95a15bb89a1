package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"entitysync/internal/logging"
	"entitysync/internal/watch"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the template whenever its file changes",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, log, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close(context.Background())

	w := watch.New(ws, ws.Config().Watch.Debounce, logging.Component(log, "watch"))
	return w.Run(ctx)
}
