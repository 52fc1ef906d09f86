package service

import (
	"fmt"
	"image"
	"log"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// BarcodeScanner decodes the QR codes and Code 128 AWB barcodes printed on
// courier labels.
type BarcodeScanner struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

func NewBarcodeScanner() *BarcodeScanner {
	return &BarcodeScanner{
		readers: []gozxing.Reader{
			qrcode.NewQRCodeReader(),
			oned.NewCode128Reader(),
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the first payload any reader finds in img.
func (s *BarcodeScanner) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	var lastErr error
	for _, reader := range s.readers {
		result, err := reader.Decode(bmp, s.hints)
		if err != nil {
			lastErr = err
			continue
		}
		return result.GetText(), nil
	}
	return "", fmt.Errorf("no barcode found: %w", lastErr)
}

// Scan decodes every image and returns the distinct payloads in image order.
func (s *BarcodeScanner) Scan(images []image.Image) []string {
	seen := make(map[string]bool)
	var codes []string

	for i, img := range images {
		code, err := s.Decode(img)
		if err != nil {
			log.Printf("No barcode on image %d: %v", i+1, err)
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
