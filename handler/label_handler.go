package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aashish23092/shipment-label-extractor/dto"
	"github.com/Aashish23092/shipment-label-extractor/service"
	"github.com/Aashish23092/shipment-label-extractor/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LabelHandler serves label extraction, batch queries and exports.
type LabelHandler struct {
	labelService  *service.LabelService
	exportService *service.ExportService
	maxFileSize   int64
}

// NewLabelHandler creates a new LabelHandler instance
func NewLabelHandler(labelService *service.LabelService, exportService *service.ExportService, maxFileSize int64) *LabelHandler {
	return &LabelHandler{
		labelService:  labelService,
		exportService: exportService,
		maxFileSize:   maxFileSize,
	}
}

// Register mounts the label routes on rg.
func (h *LabelHandler) Register(rg *gin.RouterGroup) {
	labels := rg.Group("/labels")
	{
		labels.POST("/extract", h.ExtractLabels)
		labels.POST("/export", h.ExportRecords)
	}
	batches := rg.Group("/batches")
	{
		batches.GET("/:id", h.GetBatch)
		batches.GET("/:id/export", h.ExportBatch)
	}
}

// ExtractLabels handles the POST /labels/extract endpoint
func (h *LabelHandler) ExtractLabels(c *gin.Context) {
	log.Println("Received label extraction request")

	var req dto.ExtractRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}
	if err := req.Validate(h.maxFileSize); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid upload", err)
		return
	}

	docs := make([]dto.LabelDocument, 0, len(req.Files))
	for _, file := range req.Files {
		reader, err := file.Open()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to open uploaded file", err)
			return
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to read uploaded file", err)
			return
		}
		docs = append(docs, dto.LabelDocument{Filename: file.Filename, Data: data, Password: req.Password})
	}

	log.Printf("Processing %d files", len(docs))

	batch, err := h.labelService.ProcessDocuments(c.Request.Context(), docs, nil)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to extract labels", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch": batch,
		"stats": utils.ComputeStats(batch.Records),
	})
}

// GetBatch handles GET /batches/:id with optional q, size, min_price and max_price filters.
func (h *LabelHandler) GetBatch(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid query", err)
		return
	}

	resp, err := h.labelService.Query(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		h.sendBatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportBatch handles GET /batches/:id/export?format=xlsx|csv. Filters apply
// to the exported rows as well.
func (h *LabelHandler) ExportBatch(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid query", err)
		return
	}

	resp, err := h.labelService.Query(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		h.sendBatchError(c, err)
		return
	}
	h.writeExport(c, c.DefaultQuery("format", "xlsx"), resp.Records)
}

// ExportRecords handles POST /labels/export with a JSON body of records.
func (h *LabelHandler) ExportRecords(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid export request", err)
		return
	}
	h.writeExport(c, c.DefaultQuery("format", "xlsx"), req.Records)
}

func (h *LabelHandler) writeExport(c *gin.Context, format string, records []dto.ShipmentRecord) {
	var buf bytes.Buffer
	var contentType, filename string

	switch format {
	case "xlsx":
		if err := h.exportService.WriteXLSX(&buf, records); err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to build spreadsheet", err)
			return
		}
		contentType, filename = xlsxContentType, service.ExportFileName
	case "csv":
		if err := h.exportService.WriteCSV(&buf, records); err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to build csv", err)
			return
		}
		contentType, filename = "text/csv", "extracted_data.csv"
	default:
		h.sendError(c, http.StatusBadRequest, "Unsupported export format", fmt.Errorf("unsupported format %q (use xlsx or csv)", format))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func parseQuery(c *gin.Context) (dto.Query, error) {
	q := dto.Query{
		Search: c.Query("q"),
		Size:   c.Query("size"),
	}
	if q.Size != "" && q.Size != string(dto.NotFound) && !dto.IsSize(q.Size) {
		return q, fmt.Errorf("unknown size %q (use one of %s or %q)", q.Size, strings.Join(dto.Sizes, ", "), dto.NotFound)
	}

	parse := func(name string) (*float64, error) {
		raw := c.Query(name)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number: %w", name, err)
		}
		return &v, nil
	}

	var err error
	if q.MinPrice, err = parse("min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parse("max_price"); err != nil {
		return q, err
	}
	return q, nil
}

func (h *LabelHandler) sendBatchError(c *gin.Context, err error) {
	if errors.Is(err, dto.ErrBatchNotFound) {
		h.sendError(c, http.StatusNotFound, "Batch not found", err)
		return
	}
	h.sendError(c, http.StatusInternalServerError, "Failed to load batch", err)
}

// sendError sends a structured error response
func (h *LabelHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "LABEL_EXTRACTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
