package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aashish23092/shipment-label-extractor/client"
	"github.com/Aashish23092/shipment-label-extractor/config"
	"github.com/Aashish23092/shipment-label-extractor/service"
	"github.com/Aashish23092/shipment-label-extractor/store"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "labelx",
	Short: "Extract shipment records from e-commerce shipping label PDFs",
	Long: `labelx reads shipping label PDFs, splits them into "Customer Address" blocks
and extracts name, phone, address, locality, size, total and payment mode for
each shipment. Results can be filtered, summarized and exported to xlsx or csv.

Run it as an HTTP service (serve), a one-shot command (extract) or an MCP
tool server over stdio (mcp).`,
	SilenceUsage: true,
}

func init() {
	config.BindFlags(rootCmd.PersistentFlags())
}

// setupLogging configures logging for the command being run. Quiet commands
// keep stdout for their own output and only log to stderr in debug.
func setupLogging(cfg *config.Config, quiet bool) {
	if quiet {
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
		return
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// components are the long-lived pieces shared by every command.
type components struct {
	labels  *service.LabelService
	exports *service.ExportService
	closers []func()
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func buildComponents(cfg *config.Config) (*components, error) {
	c := &components{exports: service.NewExportService()}

	batches, err := store.New(cfg.StoreDriver, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch store: %w", err)
	}
	c.closers = append(c.closers, func() {
		if err := batches.Close(); err != nil {
			log.Printf("Warning: failed to close batch store: %v", err)
		}
	})

	opts := []service.Option{service.WithBarcodeScanner(service.NewBarcodeScanner())}

	if cfg.OCREnabled {
		tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
		c.closers = append(c.closers, tesseractClient.Close)
		opts = append(opts, service.WithOCR(tesseractClient, cfg.OCRMinText))
		log.Printf("OCR fallback enabled (tessdata: %s)", cfg.TesseractDataPath)
	}

	if cfg.KafkaEnabled() {
		producer := client.NewKafkaProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		c.closers = append(c.closers, func() {
			if err := producer.Close(); err != nil {
				log.Printf("Warning: failed to close kafka producer: %v", err)
			}
		})
		opts = append(opts, service.WithPublisher(producer))
		log.Printf("Publishing batch events to %s (topic %s)", cfg.KafkaBroker, cfg.KafkaTopic)
	}

	c.labels = service.NewLabelService(service.NewPDFProcessor(), batches, opts...)
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
