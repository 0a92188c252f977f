package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
)

// areaCompletions provides dynamic tab completion for area names, based on
// the areas already present under the local btrfs directory.
func areaCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// This completion function is for the first argument only.
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	entries, err := os.ReadDir(cfg.BtrfsDir)
	if err != nil {
		// Don't return an error, just fail to complete.
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var suggestions []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), "_") {
			suggestions = append(suggestions, entry.Name())
		}
	}

	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
