package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veil/internal/lookup"
)

func newCompileLookupsCmd() *cobra.Command {
	var dir, out string

	cmd := &cobra.Command{
		Use:   "compile-lookups",
		Short: "Compile term lists into the binary lookup cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Lookup.Dir
			}
			if out == "" {
				out = cfg.Lookup.CacheFile
			}
			if dir == "" {
				return fmt.Errorf("no term directory: set --dir or lookup.dir in the config")
			}
			n, err := lookup.Compile(dir, out)
			if err != nil {
				return err
			}
			fmt.Printf("compiled %d terms from %s into %s\n", n, dir, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "term list directory (default from config)")
	cmd.Flags().StringVar(&out, "out", "", "cache file to write (default from config)")
	return cmd
}
