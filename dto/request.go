package dto

import (
	"mime/multipart"
	"strings"
)

// ExtractRequest is the multipart upload for POST /labels/extract.
type ExtractRequest struct {
	Files    []*multipart.FileHeader `form:"files[]"`
	Password string                  `form:"password"`
}

// Validate checks the upload is non-empty and only carries PDFs under maxSize bytes.
func (r *ExtractRequest) Validate(maxSize int64) error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	for _, f := range r.Files {
		if !IsPDF(f.Filename) {
			return ErrNotPDF
		}
		if maxSize > 0 && f.Size > maxSize {
			return ErrFileTooLarge
		}
	}
	return nil
}

// IsPDF reports whether filename has a .pdf extension (case-insensitive).
func IsPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// ExportRequest carries records to be written to a spreadsheet.
type ExportRequest struct {
	Records []ShipmentRecord `json:"records" binding:"required"`
}
