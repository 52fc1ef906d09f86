package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Aashish23092/shipment-label-extractor/dto"
)

const (
	ExportSheetName = "Extracted Data"
	ExportFileName  = "extracted_data.xlsx"
)

// ExportHeaders are the fixed spreadsheet columns.
var ExportHeaders = []string{
	"Index", "Name", "Phone", "Address 1", "Address 2",
	"City", "State", "Pincode", "Size", "Total", "Mode",
}

// ExportService writes shipment records to spreadsheets and reads them back.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// WriteXLSX writes records to a single-sheet workbook. Every cell except
// Index is written as a string so values like pincodes survive verbatim.
func (e *ExportService) WriteXLSX(w io.Writer, records []dto.ShipmentRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(ExportSheetName, 1, 1, style)
	}

	for i, r := range records {
		row := []interface{}{i + 1}
		for _, v := range r.Values() {
			row = append(row, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadXLSX reads records from a workbook produced by WriteXLSX.
func (e *ExportService) ReadXLSX(r io.Reader) ([]dto.ShipmentRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := ExportSheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return recordsFromRows(rows)
}

// WriteCSV writes the same columns as WriteXLSX.
func (e *ExportService) WriteCSV(w io.Writer, records []dto.ShipmentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeaders); err != nil {
		return err
	}
	for i, r := range records {
		if err := cw.Write(append([]string{strconv.Itoa(i + 1)}, r.Values()...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads records from output of WriteCSV.
func (e *ExportService) ReadCSV(r io.Reader) ([]dto.ShipmentRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return recordsFromRows(rows)
}

func recordsFromRows(rows [][]string) ([]dto.ShipmentRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	for i, h := range ExportHeaders {
		if i >= len(rows[0]) || rows[0][i] != h {
			return nil, fmt.Errorf("unexpected header in column %d: want %q", i+1, h)
		}
	}

	records := make([]dto.ShipmentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// trailing empty cells are dropped by the reader
		cells := make([]string, len(ExportHeaders))
		copy(cells, row)

		records = append(records, dto.ShipmentRecord{
			Name:     dto.ParseField(cells[1]),
			Phone:    dto.ParseField(cells[2]),
			Address1: dto.ParseField(cells[3]),
			Address2: dto.ParseField(cells[4]),
			City:     dto.ParseField(cells[5]),
			State:    dto.ParseField(cells[6]),
			Pincode:  dto.ParseField(cells[7]),
			Size:     dto.ParseField(cells[8]),
			Total:    dto.ParseField(cells[9]),
			Mode:     dto.PaymentMode(cells[10]),
		})
	}
	return records, nil
}
