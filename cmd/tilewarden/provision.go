package main

import (
	"github.com/spf13/cobra"

	"github.com/tilewarden/tilewarden/internal/tilewarden/commands"
	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
)

// NewProvisionCommand creates the 'provision' command for the CLI.
func NewProvisionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Run the full pipeline: fetch image, fetch assets, extract, publish.",
		Long: `Runs every provisioning stage in order. Each stage is idempotent, so a
rerun after a partial failure only redoes the missing work. A failing stage
is logged and the remaining stages still run; the exit code is non-zero if
anything failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return commands.Provision(cmd.Context(), cfg, commands.DefaultDeps())
		},
	}
	return cmd
}
