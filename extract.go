package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aashish23092/shipment-label-extractor/config"
	"github.com/Aashish23092/shipment-label-extractor/dto"
	"github.com/Aashish23092/shipment-label-extractor/service"
	"github.com/Aashish23092/shipment-label-extractor/utils"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdfs...]",
	Short: "Extract shipment records from label PDFs into a spreadsheet",
	Long: `Extract processes the given PDFs in order, reports progress on stderr and
writes one row per shipment to the output spreadsheet (xlsx or csv, chosen by
the --out extension). With --json the records and stats are printed to stdout
instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg, true)

		out, _ := cmd.Flags().GetString("out")
		asJSON, _ := cmd.Flags().GetBool("json")
		password, _ := cmd.Flags().GetString("password")

		docs, err := readDocuments(args, password, cfg.MaxFileSize)
		if err != nil {
			return err
		}

		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		stderr := cmd.ErrOrStderr()
		batch, err := comps.labels.ProcessDocuments(cmd.Context(), docs, func(done, total, percent int) {
			fmt.Fprintf(stderr, "Processed %d/%d files (%d%%)\n", done, total, percent)
		})
		if err != nil {
			return err
		}
		for _, d := range batch.Documents {
			if d.Error != "" {
				fmt.Fprintf(stderr, "Warning: %s: %s\n", d.Filename, d.Error)
			}
		}

		stats := utils.ComputeStats(batch.Records)
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"batch_id":  batch.ID,
				"documents": batch.Documents,
				"records":   batch.Records,
				"stats":     stats,
			})
		}

		if err := writeExport(comps.exports, out, batch.Records); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote %d records to %s (orders: %d, COD: %d, prepaid: %d, total: %s)\n",
			len(batch.Records), out, stats.TotalOrders, stats.CODCount, stats.PrepaidCount, stats.TotalPrice)
		return nil
	},
}

func readDocuments(paths []string, password string, maxSize int64) ([]dto.LabelDocument, error) {
	docs := make([]dto.LabelDocument, 0, len(paths))
	for _, path := range paths {
		if !dto.IsPDF(path) {
			return nil, fmt.Errorf("%s: %w", path, dto.ErrNotPDF)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if maxSize > 0 && int64(len(data)) > maxSize {
			return nil, fmt.Errorf("%s: %w", path, dto.ErrFileTooLarge)
		}
		docs = append(docs, dto.LabelDocument{Filename: filepath.Base(path), Data: data, Password: password})
	}
	return docs, nil
}

func writeExport(exports *service.ExportService, path string, records []dto.ShipmentRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = exports.WriteCSV(f, records)
	} else {
		err = exports.WriteXLSX(f, records)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	extractCmd.Flags().String("out", service.ExportFileName, "output spreadsheet (.xlsx or .csv)")
	extractCmd.Flags().Bool("json", false, "print records and stats as JSON instead of writing a spreadsheet")
	extractCmd.Flags().String("password", "", "password for encrypted PDFs")

	rootCmd.AddCommand(extractCmd)
}
