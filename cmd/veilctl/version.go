package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the build; the default marks a source build.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the veilctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("veilctl", Version)
		},
	}
}
