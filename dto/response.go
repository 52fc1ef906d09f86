package dto

import "errors"

var (
	ErrNoFiles       = errors.New("no files provided")
	ErrNotPDF        = errors.New("invalid file type. Supported: PDF")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrBatchNotFound = errors.New("batch not found")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// BatchResponse is a batch with its records narrowed by a query.
type BatchResponse struct {
	ID        string            `json:"id"`
	Documents []DocumentSummary `json:"documents"`
	Query     Query             `json:"query"`
	Records   []ShipmentRecord  `json:"records"`
	Stats     Stats             `json:"stats"`
}
