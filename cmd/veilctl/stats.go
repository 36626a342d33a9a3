package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"veil/internal/audit"
	"veil/internal/stats"
)

func newStatsCmd() *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			entries, err := audit.ReadFile(cfg.Log.AuditFile)
			if err != nil {
				return err
			}
			st := stats.Collect(entries, stats.Options{Status: "offline", TopN: topN})
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}

	cmd.Flags().IntVar(&topN, "top", 5, "number of tags to report")
	return cmd
}
