package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new paperref repository",
	Long: `Initialize a new paperref repository in the current directory
(or PAPERREF_ROOT when set).

Creates:
  .paperref/
  ├── library.jsonl   # Empty library
  ├── config.json     # Default graph settings
  └── cache/          # SQLite index (rebuildable)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := config.StartDir()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if err := config.Init(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Initialized paperref repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
