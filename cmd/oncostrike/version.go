package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "0.3.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the oncostrike version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("oncostrike %s\n", version)
	},
}
