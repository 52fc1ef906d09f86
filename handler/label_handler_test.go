package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/shipment-label-extractor/dto"
	"github.com/Aashish23092/shipment-label-extractor/service"
	"github.com/Aashish23092/shipment-label-extractor/store"
)

type stubPDF struct {
	pages map[string][][]string
}

func (s *stubPDF) ExtractPages(pdfData []byte, password string) ([][]string, error) {
	pages, ok := s.pages[string(pdfData)]
	if !ok {
		return nil, errors.New("not a PDF")
	}
	return pages, nil
}

func (s *stubPDF) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pdf := &stubPDF{pages: map[string][][]string{
		"cod": {{
			"Customer Address",
			"ravi kumar",
			"12 Lake Road",
			"Chennai, Tamil Nadu, 600001",
			"COD: Collect",
			"9845012345",
			"SKU Size Qty Color Order No.",
			"TSHIRT-01 XL 1 Blue 1001",
			"Total Rs.499.00 Rs.549.00",
		}},
		"prepaid": {{
			"Customer Address",
			"meera iyer",
			"4 Hill View",
			"Bengaluru, Karnataka, 560001",
			"Prepaid: Do not collect",
			"8123456780",
			"Total Rs.199.00 Rs.199.00",
		}},
	}}

	labels := service.NewLabelService(pdf, store.NewMemoryStore())
	h := NewLabelHandler(labels, service.NewExportService(), 1<<20)

	router := gin.New()
	h.Register(router.Group("/api/v1"))
	return router
}

func uploadRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile("files[]", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/labels/extract", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestExtractLabels(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, map[string]string{"a.pdf": "cod"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Batch dto.Batch `json:"batch"`
		Stats dto.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Batch.Records, 1)
	assert.Equal(t, "Ravi Kumar", resp.Batch.Records[0].Name.String())
	assert.Equal(t, "XL", resp.Batch.Records[0].Size.String())
	assert.Equal(t, 1, resp.Stats.CODCount)
	assert.Equal(t, "549.00", resp.Stats.TotalPrice)
}

func TestExtractLabelsRejectsBadUploads(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, map[string]string{"notes.txt": "cod"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, dto.ErrNotPDF.Error(), errResp.Message)
	assert.Equal(t, http.StatusBadRequest, errResp.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBatchWithFilters(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, map[string]string{"a.pdf": "cod", "b.pdf": "prepaid"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest?min_price=300", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Chennai", resp.Records[0].City.String())
	assert.Equal(t, 1, resp.Stats.TotalOrders)
	require.NotNil(t, resp.Query.MinPrice)
	assert.Equal(t, 300.0, *resp.Query.MinPrice)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest?max_price=cheap", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest?size=XXS", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest?size=XL", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = dto.BatchResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Ravi Kumar", resp.Records[0].Name.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest?size=Not+found", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = dto.BatchResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Meera Iyer", resp.Records[0].Name.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/no-such-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportBatch(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, map[string]string{"a.pdf": "cod"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "extracted_data.xlsx")

	records, err := service.NewExportService().ReadXLSX(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "600001", records[0].Pincode.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest/export?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Index,Name,Phone"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/batches/latest/export?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportRecords(t *testing.T) {
	router := newTestRouter(t)

	body := `{"records":[{"name":"Ravi Kumar","phone":"9845012345","address1":"12 Lake Road","address2":"None",
		"city":"Chennai","state":"Tamil Nadu","pincode":"600001","size":"XL","total":"Rs.549.00","mode":"COD"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/labels/export?format=csv", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	records, err := service.NewExportService().ReadCSV(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, dto.ModeCOD, records[0].Mode)
	assert.False(t, records[0].Address2.IsPresent())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/labels/export", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
