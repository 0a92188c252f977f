package main

import (
	"github.com/spf13/cobra"

	"github.com/tilewarden/tilewarden/internal/tilewarden/commands"
	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
)

func NewFetchAssetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-assets",
		Short: "Download fonts, styles and sprite archives.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return commands.FetchAssets(cmd.Context(), cfg, commands.DefaultDeps())
		},
	}
	return cmd
}
