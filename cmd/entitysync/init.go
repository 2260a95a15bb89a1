package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const templateFile = "entity_template.json"

func initCmd() *cobra.Command {
	var projectName string
	var onSave bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new entitysync project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, onSave)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().BoolVar(&onSave, "export-on-save", false, "Write the export after every change")
	return cmd
}

func runInit(projectName string, onSave bool) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if _, err := os.Stat(templateFile); err == nil {
		return fmt.Errorf("%s already exists", templateFile)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\nroot: .\ntemplate: //%s\n\nexport:\n  path: //btg_import.json\n  on_save: %t\n  indent: 4\n\ndatabase:\n  dsn: sqlite://.entitysync.db\n\nlog:\n  level: info\n  format: text\n\nwatch:\n  debounce: 250ms\n\ningest:\n  paths:\n    - ./scene/\n", projectName, templateFile, onSave)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	if err := os.WriteFile(templateFile, []byte(starterTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", templateFile, err)
	}

	fmt.Fprintf(os.Stdout, "Created %s and %s.\n", configPath, templateFile)
	return nil
}

// starterTemplate returns a small template with one class per common
// variable kind. Class uids are fresh so separate projects never collide.
func starterTemplate() string {
	return fmt.Sprintf(`{
    "Enemy": {
        "uid": "uid://%s",
        "variables": {
            "health": {"type": "int", "default": 100, "description": "Starting hit points"},
            "speed": {"type": "float", "default": 4.5},
            "spawn_offset": {"type": "Vector3", "default": [0, 0, 0]},
            "behaviour": {"type": "enum", "default": "patrol", "options": ["idle", "patrol", "chase"]}
        }
    },
    "Pickup": {
        "uid": "uid://%s",
        "variables": {
            "item": {"type": "String", "default": "coin"},
            "respawns": {"type": "bool", "default": false}
        }
    }
}
`, uuid.NewString(), uuid.NewString())
}
