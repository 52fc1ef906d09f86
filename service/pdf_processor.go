package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFProcessor reads label PDFs. ExtractPages returns, per page, the text
// fragments in reading order: one fragment per text run, rows top to bottom.
type PDFProcessor interface {
	ExtractPages(pdfData []byte, password string) ([][]string, error)
	ExtractImages(pdfData []byte, password string) ([]image.Image, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// JoinPages assembles document text: each page's fragments joined by
// newlines, every page prefixed with a newline, pages in order.
func JoinPages(pages [][]string) string {
	var sb strings.Builder
	for _, fragments := range pages {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(fragments, "\n"))
	}
	return sb.String()
}

// pdfConfig returns a pdfcpu configuration that opens files protected by
// password, whether it is the user or the owner password.
func pdfConfig(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	return conf
}

// decrypt returns a decrypted copy of pdfData. ledongthuc/pdf cannot open
// encrypted files, so pdfcpu strips the encryption first.
func decrypt(pdfData []byte, password string) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(pdfData), &out, pdfConfig(password)); err != nil {
		return nil, fmt.Errorf("failed to decrypt pdf: %w", err)
	}
	return out.Bytes(), nil
}

func (p *pdfProcessor) ExtractPages(pdfData []byte, password string) ([][]string, error) {
	if password != "" {
		plain, err := decrypt(pdfData, password)
		if err != nil {
			return nil, err
		}
		pdfData = plain
	}

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("error creating PDF reader: %w", err)
	}

	totalPage := r.NumPage()
	pages := make([][]string, 0, totalPage)

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}

		var fragments []string
		for _, row := range rows {
			for _, run := range row.Content {
				if run.S == "" {
					continue
				}
				fragments = append(fragments, run.S)
			}
		}
		pages = append(pages, fragments)
	}
	return pages, nil
}

func (p *pdfProcessor) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "label_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// nil selects every page
	if err := api.ExtractImages(bytes.NewReader(pdfData), nil, imageCollector(tempDir), pdfConfig(password)); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	// names sort in page then object order
	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []image.Image
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		imgFile, err := os.Open(filepath.Join(tempDir, file.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// imageFileName names an extracted image so that lexical order is page
// order, then object order within the page.
func imageFileName(pageNr, objNr, maxPageDigits int, fileType string) string {
	return fmt.Sprintf("p%0*d_%010d.%s", maxPageDigits, pageNr, objNr, fileType)
}

// imageCollector writes every extracted image into dir.
func imageCollector(dir string) func(model.Image, bool, int) error {
	return func(img model.Image, singleImgPerPage bool, maxPageDigits int) error {
		name := imageFileName(img.PageNr, img.ObjNr, maxPageDigits, img.FileType)
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.ReadFrom(img)
		return err
	}
}
