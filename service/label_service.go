package service

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aashish23092/shipment-label-extractor/dto"
	"github.com/Aashish23092/shipment-label-extractor/store"
	"github.com/Aashish23092/shipment-label-extractor/utils"
)

// OCRClient recognizes text on a rasterized page.
type OCRClient interface {
	ExtractImageText(img image.Image) (string, float64, error)
}

// Publisher delivers batch events downstream.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// ProgressFunc is called after each document with the share of the batch done.
type ProgressFunc func(done, total, percent int)

type Option func(*LabelService)

// WithOCR enables the OCR fallback for documents whose text layer has fewer
// than minText non-space characters.
func WithOCR(ocr OCRClient, minText int) Option {
	return func(s *LabelService) {
		s.ocr = ocr
		s.ocrMinText = minText
	}
}

func WithBarcodeScanner(scanner *BarcodeScanner) Option {
	return func(s *LabelService) { s.barcodes = scanner }
}

func WithPublisher(p Publisher) Option {
	return func(s *LabelService) { s.publisher = p }
}

// LabelService runs label PDFs through text extraction and block parsing.
// Documents are processed one at a time, in upload order.
type LabelService struct {
	pdfProcessor PDFProcessor
	batches      store.BatchStore
	ocr          OCRClient
	ocrMinText   int
	barcodes     *BarcodeScanner
	publisher    Publisher
	now          func() time.Time
}

func NewLabelService(pdfProcessor PDFProcessor, batches store.BatchStore, opts ...Option) *LabelService {
	s := &LabelService{
		pdfProcessor: pdfProcessor,
		batches:      batches,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessDocuments extracts every document and saves the result as the
// latest batch. A document that fails to read is reported in its summary
// and does not stop the batch. ctx is checked between documents only.
func (s *LabelService) ProcessDocuments(ctx context.Context, docs []dto.LabelDocument, progress ProgressFunc) (*dto.Batch, error) {
	if len(docs) == 0 {
		return nil, dto.ErrNoFiles
	}

	batch := &dto.Batch{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Documents: make([]dto.DocumentSummary, 0, len(docs)),
		Records:   []dto.ShipmentRecord{},
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, summary := s.ExtractDocument(doc)
		batch.Records = append(batch.Records, records...)
		batch.Documents = append(batch.Documents, summary)

		percent := int(math.Round(float64(i+1) / float64(len(docs)) * 100))
		log.Printf("Processed %s: %d records (%d%% of batch)", doc.Filename, len(records), percent)
		if progress != nil {
			progress(i+1, len(docs), percent)
		}
	}

	if s.batches != nil {
		if err := s.batches.SaveBatch(ctx, *batch); err != nil {
			return nil, fmt.Errorf("failed to save batch: %w", err)
		}
	}

	if s.publisher != nil {
		event := dto.ShipmentEvent{
			BatchID:   batch.ID,
			CreatedAt: batch.CreatedAt,
			Records:   batch.Records,
			Stats:     utils.ComputeStats(batch.Records),
		}
		// delivery is best-effort; the batch is already stored
		if err := s.publisher.Publish(ctx, batch.ID, event); err != nil {
			log.Printf("Warning: failed to publish batch %s: %v", batch.ID, err)
		}
	}

	log.Printf("Batch %s complete: %d documents, %d records", batch.ID, len(docs), len(batch.Records))
	return batch, nil
}

// ExtractDocument reads one PDF and parses its shipment records.
func (s *LabelService) ExtractDocument(doc dto.LabelDocument) ([]dto.ShipmentRecord, dto.DocumentSummary) {
	summary := dto.DocumentSummary{Filename: doc.Filename}

	pages, err := s.pdfProcessor.ExtractPages(doc.Data, doc.Password)
	if err != nil {
		log.Printf("PDF text extraction failed for %s: %v", doc.Filename, err)
		summary.Error = err.Error()
		return []dto.ShipmentRecord{}, summary
	}
	summary.Pages = len(pages)
	summary.Source = dto.SourceText
	text := JoinPages(pages)

	var images []image.Image
	needOCR := s.ocr != nil && len(strings.Join(strings.Fields(text), "")) < s.ocrMinText
	if needOCR || s.barcodes != nil {
		images, err = s.pdfProcessor.ExtractImages(doc.Data, doc.Password)
		if err != nil {
			log.Printf("Failed to extract images from %s: %v", doc.Filename, err)
		}
	}

	if needOCR && len(images) > 0 {
		log.Printf("PDF %s has minimal text, running OCR on %d images", doc.Filename, len(images))
		if ocrText, ok := s.ocrImages(doc.Filename, images); ok {
			text = ocrText
			summary.Source = dto.SourceOCR
		}
	}

	if s.barcodes != nil && len(images) > 0 {
		summary.Barcodes = s.barcodes.Scan(images)
	}

	records := utils.ParseShipmentLabels(text)
	summary.Records = len(records)
	return records, summary
}

// ocrImages recognizes each image as one page, in order.
func (s *LabelService) ocrImages(filename string, images []image.Image) (string, bool) {
	var pages [][]string
	var totalConfidence float64

	for i, img := range images {
		pageText, conf, err := s.ocr.ExtractImageText(img)
		if err != nil {
			log.Printf("OCR failed for image %d of %s: %v", i+1, filename, err)
			continue
		}
		pages = append(pages, strings.Split(strings.TrimRight(pageText, "\n"), "\n"))
		totalConfidence += conf
	}

	if len(pages) == 0 {
		return "", false
	}
	log.Printf("OCR of %s done: %d pages, mean confidence %.1f", filename, len(pages), totalConfidence/float64(len(pages)))
	return JoinPages(pages), true
}

// Query narrows a stored batch (or store.LatestID) and aggregates the result.
func (s *LabelService) Query(ctx context.Context, batchID string, q dto.Query) (*dto.BatchResponse, error) {
	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	records := utils.FilterRecords(batch.Records, q)
	return &dto.BatchResponse{
		ID:        batch.ID,
		Documents: batch.Documents,
		Query:     q,
		Records:   records,
		Stats:     utils.ComputeStats(records),
	}, nil
}

// GetBatch loads a batch by id, or the latest one for store.LatestID.
func (s *LabelService) GetBatch(ctx context.Context, batchID string) (dto.Batch, error) {
	if s.batches == nil {
		return dto.Batch{}, dto.ErrBatchNotFound
	}
	return s.batches.GetBatch(ctx, batchID)
}
