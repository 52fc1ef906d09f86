package service

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/shipment-label-extractor/dto"
	"github.com/Aashish23092/shipment-label-extractor/store"
)

// fakePDF serves pages keyed by the document bytes.
type fakePDF struct {
	pages  map[string][][]string
	images map[string][]image.Image
}

func (f *fakePDF) ExtractPages(pdfData []byte, password string) ([][]string, error) {
	pages, ok := f.pages[string(pdfData)]
	if !ok {
		return nil, errors.New("malformed PDF: xref not found")
	}
	return pages, nil
}

func (f *fakePDF) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	return f.images[string(pdfData)], nil
}

type fakeOCR struct {
	text  string
	calls int
}

func (f *fakeOCR) ExtractImageText(img image.Image) (string, float64, error) {
	f.calls++
	return f.text, 91.5, nil
}

type fakePublisher struct {
	keys   []string
	events []interface{}
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	f.keys = append(f.keys, key)
	f.events = append(f.events, value)
	return f.err
}

var labelPage = []string{
	"Customer Address",
	"RAHUL sharma",
	"Flat 12, Green Park",
	"Mumbai, Maharashtra, 400001",
	"COD: Collect Rs.120.00",
	"Mobile 9876543210",
	"Total Rs.100.00 Rs.120.00",
}

var prepaidPage = []string{
	"Customer Address",
	"priya nair",
	"MG Road",
	"Kochi, Kerala, 682001",
	"Prepaid: Do not collect",
	"8123456789",
}

func newFakePDF() *fakePDF {
	return &fakePDF{
		pages: map[string][][]string{
			"a.pdf":     {labelPage},
			"b.pdf":     {{"Invoice only"}, prepaidPage},
			"empty.pdf": {{}},
		},
		images: map[string][]image.Image{
			"empty.pdf": {image.NewGray(image.Rect(0, 0, 4, 4))},
		},
	}
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "", JoinPages(nil))
	assert.Equal(t, "\na\nb\n\nc", JoinPages([][]string{{"a", "b"}, {}, {"c"}}))
}

func TestProcessDocuments(t *testing.T) {
	batches := store.NewMemoryStore()
	pub := &fakePublisher{}
	svc := NewLabelService(newFakePDF(), batches, WithPublisher(pub))

	var progress []int
	batch, err := svc.ProcessDocuments(context.Background(), []dto.LabelDocument{
		{Filename: "a.pdf", Data: []byte("a.pdf")},
		{Filename: "broken.pdf", Data: []byte("broken")},
		{Filename: "b.pdf", Data: []byte("b.pdf")},
	}, func(done, total, percent int) {
		progress = append(progress, percent)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{33, 67, 100}, progress)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "Rahul Sharma", batch.Records[0].Name.String())
	assert.Equal(t, dto.ModeCOD, batch.Records[0].Mode)
	assert.Equal(t, "Rs.120.00", batch.Records[0].Total.String())
	assert.Equal(t, "Priya Nair", batch.Records[1].Name.String())
	assert.Equal(t, dto.ModePrepaid, batch.Records[1].Mode)

	require.Len(t, batch.Documents, 3)
	assert.Equal(t, dto.DocumentSummary{Filename: "a.pdf", Pages: 1, Source: dto.SourceText, Records: 1}, batch.Documents[0])
	assert.Contains(t, batch.Documents[1].Error, "malformed PDF")
	assert.Equal(t, 2, batch.Documents[2].Pages)

	stored, err := batches.GetBatch(context.Background(), store.LatestID)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, stored.ID)

	require.Equal(t, []string{batch.ID}, pub.keys)
	event := pub.events[0].(dto.ShipmentEvent)
	assert.Equal(t, 1, event.Stats.CODCount)
	assert.Equal(t, "120.00", event.Stats.TotalPrice)
}

func TestProcessDocumentsReplacesLatest(t *testing.T) {
	svc := NewLabelService(newFakePDF(), store.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.ProcessDocuments(ctx, []dto.LabelDocument{{Filename: "a.pdf", Data: []byte("a.pdf")}}, nil)
	require.NoError(t, err)
	second, err := svc.ProcessDocuments(ctx, []dto.LabelDocument{{Filename: "b.pdf", Data: []byte("b.pdf")}}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	latest, err := svc.GetBatch(ctx, store.LatestID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	old, err := svc.GetBatch(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rahul Sharma", old.Records[0].Name.String())
}

func TestProcessDocumentsPublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLabelService(newFakePDF(), store.NewMemoryStore(), WithPublisher(pub))

	batch, err := svc.ProcessDocuments(context.Background(), []dto.LabelDocument{{Filename: "a.pdf", Data: []byte("a.pdf")}}, nil)
	require.NoError(t, err)
	assert.Len(t, batch.Records, 1)
}

func TestProcessDocumentsCanceled(t *testing.T) {
	svc := NewLabelService(newFakePDF(), store.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessDocuments(ctx, []dto.LabelDocument{{Filename: "a.pdf", Data: []byte("a.pdf")}}, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.ProcessDocuments(context.Background(), nil, nil)
	assert.ErrorIs(t, err, dto.ErrNoFiles)
}

func TestExtractDocumentOCRFallback(t *testing.T) {
	ocr := &fakeOCR{text: "Customer Address\nASHA RAO\nLake View\nPune, Maharashtra, 411001\nPrepaid: 7000000002\n"}
	svc := NewLabelService(newFakePDF(), nil, WithOCR(ocr, 20))

	records, summary := svc.ExtractDocument(dto.LabelDocument{Filename: "empty.pdf", Data: []byte("empty.pdf")})
	require.Len(t, records, 1)
	assert.Equal(t, 1, ocr.calls)
	assert.Equal(t, dto.SourceOCR, summary.Source)
	assert.Equal(t, "Asha Rao", records[0].Name.String())
	assert.Equal(t, "Pune", records[0].City.String())

	// a real text layer never goes through OCR
	_, summary = svc.ExtractDocument(dto.LabelDocument{Filename: "a.pdf", Data: []byte("a.pdf")})
	assert.Equal(t, dto.SourceText, summary.Source)
	assert.Equal(t, 1, ocr.calls)
}

func TestQuery(t *testing.T) {
	svc := NewLabelService(newFakePDF(), store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Query(ctx, store.LatestID, dto.Query{})
	assert.ErrorIs(t, err, dto.ErrBatchNotFound)

	_, err = svc.ProcessDocuments(ctx, []dto.LabelDocument{
		{Filename: "a.pdf", Data: []byte("a.pdf")},
		{Filename: "b.pdf", Data: []byte("b.pdf")},
	}, nil)
	require.NoError(t, err)

	resp, err := svc.Query(ctx, store.LatestID, dto.Query{Search: "kochi"})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Priya Nair", resp.Records[0].Name.String())
	assert.Equal(t, 1, resp.Stats.PrepaidCount)
	assert.Equal(t, 0, resp.Stats.CODCount)
	assert.Len(t, resp.Documents, 2)
}
