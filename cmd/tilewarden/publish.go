package main

import (
	"github.com/spf13/cobra"

	"github.com/tilewarden/tilewarden/internal/tilewarden/commands"
	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
)

// NewPublishCommand creates the 'publish' command for the CLI.
func NewPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Generate nginx routing fragments for the extracted tiles.",
		Long: `Walks the tiles directory, rewrites each version's TileJSON manifest for
the configured public hostname, and regenerates the nginx include files
(per-version rules plus latest aliases). Regeneration is total; prior
fragment files are overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			_, err = commands.Publish(cfg)
			return err
		},
	}
	return cmd
}
