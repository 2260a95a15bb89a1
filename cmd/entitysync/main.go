package main

import (
	"os"

	"github.com/spf13/cobra"

	"entitysync/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "entitysync",
		Short:        "Keep scene objects in sync with an entity template and export them to the engine",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "Project config file")
	root.AddCommand(initCmd())
	root.AddCommand(templateCmd())
	root.AddCommand(objectCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
