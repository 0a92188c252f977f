package main

import (
	"github.com/spf13/cobra"

	"github.com/tilewarden/tilewarden/internal/tilewarden/commands"
	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
)

// NewExtractCommand creates the 'extract' command for the CLI.
func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [area [version]]",
		Short: "Extract tiles from downloaded btrfs images.",
		Long: `Loop-mounts downloaded btrfs images and copies their tile payload into
the tiles directory so an unprivileged web server can serve them. With no
arguments, every downloaded image is extracted; with an area alone, every
downloaded version of that area. Requires root for the loop mount.`,
		Args:              cobra.RangeArgs(0, 2),
		ValidArgsFunction: areaCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			deps := commands.DefaultDeps()

			switch len(args) {
			case 2:
				return commands.ExtractArea(cmd.Context(), cfg, deps, args[0], args[1])
			case 1:
				return commands.ExtractAreaVersions(cmd.Context(), cfg, deps, args[0])
			default:
				return commands.ExtractAll(cmd.Context(), cfg, deps)
			}
		},
	}

	return cmd
}
