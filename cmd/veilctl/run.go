package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veil/internal/audit"
	"veil/internal/batch"
	"veil/internal/detect"
	"veil/internal/logger"
	"veil/internal/lookup"
	"veil/internal/pipeline"
	"veil/internal/resolve"
)

func newRunCmd() *cobra.Command {
	var (
		filePath string
		outPath  string
		jobs     int
		disabled []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "De-identify a tab-delimited note file",
		Long: "Reads a tab-delimited file (9 columns, UTF-8) and writes each record\n" +
			"with the de-identified note text appended as a tenth column.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lg := logger.New("VEILCTL", cfg.Log.Level)

			store, err := lookup.Load(cfg.Lookup.Dir, cfg.Lookup.CacheFile)
			if err != nil {
				return err
			}
			registry := detect.NewRegistry(store)

			off := append(append([]string{}, cfg.Detectors.Disabled...), disabled...)
			if err := registry.Validate(off); err != nil {
				return err
			}

			resolver := resolve.New()
			resolver.Connectors = cfg.Resolver.Connectors
			deid := pipeline.New(registry, resolver)

			auditLog, err := audit.NewJSONLLogger(cfg.Log.AuditFile)
			if err != nil {
				return err
			}

			in, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer in.Close()

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if jobs == 0 {
				jobs = cfg.Batch.Jobs
			}
			proc := batch.New(deid, pipeline.Options{Disabled: off}, jobs, lg, auditLog)
			sum, err := proc.ProcessFile(cmd.Context(), in, out)
			if err != nil {
				return err
			}

			printSummary(sum)
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "tab-delimited input file (UTF-8)")
	cmd.Flags().StringVar(&outPath, "output", "", "output file (default stdout)")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "parallel workers (default from config, then GOMAXPROCS)")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "detector names to disable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printSummary(sum batch.Summary) {
	bold := color.New(color.Bold)
	bold.Fprintf(os.Stderr, "processed %d records in %s\n", sum.Records, sum.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  redacted spans: %d\n", sum.Redacted)
	if sum.Failed > 0 {
		color.New(color.FgRed).Fprintf(os.Stderr, "  failed records: %d\n", sum.Failed)
	}
}
