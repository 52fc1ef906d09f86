package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Aashish23092/shipment-label-extractor/dto"
	"github.com/Aashish23092/shipment-label-extractor/service"
	"github.com/Aashish23092/shipment-label-extractor/utils"
)

// Server exposes label extraction as MCP tools over stdio.
type Server struct {
	labelService *service.LabelService
	maxFileSize  int64
	mcpServer    *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(name, version string, labelService *service.LabelService, maxFileSize int64) (*Server, error) {
	if labelService == nil {
		return nil, fmt.Errorf("labelService cannot be nil")
	}

	s := &Server{
		labelService: labelService,
		maxFileSize:  maxFileSize,
		mcpServer:    server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	extractTool := mcp.NewTool(
		"extract_shipments",
		mcp.WithDescription("Extract shipment records from a shipping label PDF and store them as the latest batch"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the label PDF"),
		),
		mcp.WithString("password",
			mcp.Description("Password for encrypted PDFs"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractShipments)

	statsTool := mcp.NewTool(
		"shipment_stats",
		mcp.WithDescription("Filter the shipments of a label PDF and summarize orders, sizes, totals and COD duplicates"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the label PDF"),
		),
		mcp.WithString("q",
			mcp.Description("Case-insensitive text matched against every field"),
		),
		mcp.WithString("size",
			mcp.Description("Exact size, e.g. XL"),
		),
		mcp.WithNumber("min_price",
			mcp.Description("Lowest order total to include"),
		),
		mcp.WithNumber("max_price",
			mcp.Description("Highest order total to include"),
		),
	)
	s.mcpServer.AddTool(statsTool, s.handleShipmentStats)
}

func (s *Server) handleExtractShipments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.readDocument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	batch, err := s.labelService.ProcessDocuments(ctx, []dto.LabelDocument{doc}, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if msg := batch.Documents[0].Error; msg != "" {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %s", doc.Filename, msg)), nil
	}

	return jsonResult(map[string]interface{}{
		"batch_id": batch.ID,
		"records":  batch.Records,
		"stats":    utils.ComputeStats(batch.Records),
	})
}

func (s *Server) handleShipmentStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.readDocument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, summary := s.labelService.ExtractDocument(doc)
	if summary.Error != "" {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %s", doc.Filename, summary.Error)), nil
	}

	args := request.GetArguments()
	q := dto.Query{}
	if v, ok := args["q"].(string); ok {
		q.Search = v
	}
	if v, ok := args["size"].(string); ok {
		q.Size = v
	}
	if v, ok := args["min_price"].(float64); ok {
		q.MinPrice = &v
	}
	if v, ok := args["max_price"].(float64); ok {
		q.MaxPrice = &v
	}

	filtered := utils.FilterRecords(records, q)
	return jsonResult(map[string]interface{}{
		"query":   q,
		"matched": len(filtered),
		"stats":   utils.ComputeStats(filtered),
	})
}

func (s *Server) readDocument(request mcp.CallToolRequest) (dto.LabelDocument, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return dto.LabelDocument{}, err
	}
	if !dto.IsPDF(path) {
		return dto.LabelDocument{}, dto.ErrNotPDF
	}

	info, err := os.Stat(path)
	if err != nil {
		return dto.LabelDocument{}, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return dto.LabelDocument{}, dto.ErrFileTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return dto.LabelDocument{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := dto.LabelDocument{Filename: filepath.Base(path), Data: data}
	if pw, ok := request.GetArguments()["password"].(string); ok {
		doc.Password = pw
	}
	return doc, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// Run serves MCP requests on stdin/stdout until the input is closed or ctx
// is canceled.
func (s *Server) Run(ctx context.Context) error {
	log.Printf("Starting shipment label MCP server in stdio mode")
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve speaks the MCP stdio protocol over in and out. Cancellation is a
// clean shutdown.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.Default())

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("failed to serve stdio: %w", err)
}
