package main

import (
	"github.com/spf13/cobra"

	"github.com/tilewarden/tilewarden/internal/tilewarden/commands"
	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
)

func NewFetchImageCommand() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:               "fetch-image [area]",
		Short:             "Download the btrfs tile image for an area.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: areaCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			area := cfg.Area
			if len(args) > 0 {
				area = args[0]
			}
			v := cfg.Version
			if version != "" {
				v = version
			}

			return commands.FetchImage(cmd.Context(), cfg, commands.DefaultDeps(), area, v)
		},
	}

	cmd.Flags().StringVarP(&version, "version", "v", "", `Version to download (defaults to "latest")`)

	return cmd
}
