package dto

import "time"

// ExtractionSource says how a document's text was obtained.
type ExtractionSource string

const (
	SourceText ExtractionSource = "text"
	SourceOCR  ExtractionSource = "ocr"
)

// LabelDocument is one uploaded label PDF.
type LabelDocument struct {
	Filename string
	Data     []byte
	Password string
}

// DocumentSummary describes how a single document in a batch was processed.
type DocumentSummary struct {
	Filename string           `json:"filename"`
	Pages    int              `json:"pages"`
	Source   ExtractionSource `json:"source,omitempty"`
	Records  int              `json:"records"`
	Barcodes []string         `json:"barcodes,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Batch is the result of one extraction run over a set of documents.
// Records are in document order, then block order.
type Batch struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Documents []DocumentSummary `json:"documents"`
	Records   []ShipmentRecord  `json:"records"`
}

// Query selects records from a result set. Zero value matches everything.
type Query struct {
	Search   string   `json:"q,omitempty"`
	Size     string   `json:"size,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// Stats aggregates a set of records for the dashboard.
type Stats struct {
	TotalOrders       int            `json:"total_orders"`
	SizeCount         map[string]int `json:"size_count"`
	TotalPrice        string         `json:"total_price"`
	CODCount          int            `json:"cod_count"`
	PrepaidCount      int            `json:"prepaid_count"`
	UniqueOrders      int            `json:"unique_orders"`
	CODDuplicateCount int            `json:"cod_duplicate_count"`
	CODUniqueOrders   int            `json:"cod_unique_orders"`
}

// ShipmentEvent is published once per completed batch.
type ShipmentEvent struct {
	BatchID   string           `json:"batch_id"`
	CreatedAt time.Time        `json:"created_at"`
	Records   []ShipmentRecord `json:"records"`
	Stats     Stats            `json:"stats"`
}
