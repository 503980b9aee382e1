package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dori/stint/internal/db"
	"github.com/dori/stint/internal/report"
	"github.com/dori/stint/internal/tracker"
	"github.com/spf13/cobra"
)

var pdfPath string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print recorded time per project and task",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.StoreFile
		if path == "" {
			return fmt.Errorf("no store configured, pass --db")
		}
		if !db.Exists(path) {
			return fmt.Errorf("%s: store file does not exist", path)
		}

		database, err := db.OpenReadOnly(path)
		if err != nil {
			return err
		}
		defer database.Close()

		logger := log.New(os.Stderr, "stint ", log.LstdFlags)
		tr := tracker.New(tracker.WithLogger(logger))
		tr.Rebuild(context.Background(), database)
		totals := tr.Report()

		if pdfPath != "" {
			if err := report.WritePDF(pdfPath, path, totals, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", pdfPath)
			return nil
		}

		return report.WriteText(cmd.OutOrStdout(), totals)
	},
}

func init() {
	reportCmd.Flags().StringVar(&pdfPath, "pdf", "", "write the report to this PDF file instead")
}
