package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tilewarden",
		Short: "Provision a tile-serving deployment from CDN archives",
	}

	// Add commands
	rootCmd.AddCommand(NewFetchImageCommand())
	rootCmd.AddCommand(NewFetchAssetsCommand())
	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewPublishCommand())
	rootCmd.AddCommand(NewProvisionCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
