// veilctl is the command-line driver for batch de-identification and
// lookup maintenance.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veil/internal/config"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "veilctl",
		Short:         "De-identify clinical notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.toml (default ~/.veil/config.toml)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newCompileLookupsCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "veilctl:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	path := cfgPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	return config.Load(path)
}
