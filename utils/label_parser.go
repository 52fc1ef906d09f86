package utils

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/shipment-label-extractor/dto"
)

// spaceChars is the whitespace of label text: ASCII whitespace plus the
// Unicode spaces PDF producers emit (NBSP, thin and ideographic spaces, BOM).
const spaceChars = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

// withSpace compiles pattern with \s widened to spaceChars, inside or
// outside a character class.
func withSpace(pattern string) *regexp.Regexp {
	pattern = strings.ReplaceAll(pattern, `[\s-]`, `[`+spaceChars+`-]`)
	pattern = strings.ReplaceAll(pattern, `\s`, `[`+spaceChars+`]`)
	return regexp.MustCompile(pattern)
}

var (
	blockMarker      = regexp.MustCompile(`(?i)Customer Address`)
	phoneRegex       = withSpace(`(?:\+91[\s-]?)?[6-9]\d{9}`)
	addressEndRegex  = regexp.MustCompile(`(?i)If undelivered|COD|Prepaid|Pickup`)
	wordStartRegex   = regexp.MustCompile(`\b\w`)
	sizeRegex        = withSpace(`(?i)SKU\s+Size\s+Qty\s+Color\s+Order No\.\s+[^\n\r]*?\s+(\b(XXXL|XXL|XL|L|M|S|XS|4XL|5XL|6XL|7XL|8XL)\b)`)
	totalRegex       = withSpace(`(?i)Total\s+(Rs\.\d+\.\d{2})\s+(Rs\.\d+\.\d{2})`)
	paymentModeRegex = withSpace(`(?i)(COD|Prepaid)\s*:`)
)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// ParseShipmentLabels splits label text into "Customer Address" blocks and
// parses one record per block. Blocks without a phone number are dropped.
// Text with no marker yields an empty slice.
func ParseShipmentLabels(text string) []dto.ShipmentRecord {
	records := []dto.ShipmentRecord{}
	for _, block := range SplitBlocks(text) {
		rec := ParseLabelBlock(block)
		if !rec.Phone.IsPresent() {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// SplitBlocks returns the text following each "Customer Address" marker.
func SplitBlocks(text string) []string {
	parts := blockMarker.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}
	return parts[1:]
}

// ParseLabelBlock extracts every field of a single block. Each field is looked
// up independently; a miss only affects that field.
func ParseLabelBlock(block string) dto.ShipmentRecord {
	lines := addressLines(block)

	name := dto.Missing(dto.Unknown)
	if len(lines) > 0 {
		name = dto.Found(TitleCase(lines[0]), dto.Unknown)
	}

	address1, address2 := splitAddress(lines)
	city, state, pincode := splitLocality(lines)

	return dto.ShipmentRecord{
		Name:     name,
		Phone:    extractPhone(block),
		Address1: address1,
		Address2: address2,
		City:     city,
		State:    state,
		Pincode:  pincode,
		Size:     extractSize(block),
		Total:    extractTotal(block),
		Mode:     extractPaymentMode(block),
	}
}

// TitleCase lowercases s and upper-cases the first letter of every word.
func TitleCase(s string) string {
	return wordStartRegex.ReplaceAllStringFunc(strings.ToLower(s), strings.ToUpper)
}

func extractPhone(block string) dto.Field {
	return dto.Found(phoneRegex.FindString(block), dto.None)
}

// addressLines cuts the block at the first delivery/payment keyword and
// returns its non-empty trimmed lines.
func addressLines(block string) []string {
	raw := block
	if loc := addressEndRegex.FindStringIndex(block); loc != nil {
		raw = block[:loc[0]]
	}
	raw = trimSpace(raw)

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		l = trimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// splitAddress divides the lines between the name and the locality line into
// two halves; the first half gets the extra line when the count is odd.
func splitAddress(lines []string) (dto.Field, dto.Field) {
	switch {
	case len(lines) >= 4:
		middle := lines[1 : len(lines)-1]
		mid := (len(middle) + 1) / 2
		return dto.Found(strings.Join(middle[:mid], ", "), dto.None),
			dto.Found(strings.Join(middle[mid:], ", "), dto.None)
	case len(lines) == 2 || len(lines) == 3:
		return dto.Found(lines[1], dto.None), dto.Missing(dto.None)
	}
	return dto.Missing(dto.None), dto.Missing(dto.None)
}

// splitLocality reads city, state and pincode from the last three comma
// separated tokens of the last line.
func splitLocality(lines []string) (city, state, pincode dto.Field) {
	last := ""
	if len(lines) > 0 {
		last = lines[len(lines)-1]
	}

	parts := strings.Split(last, ",")
	for i := range parts {
		parts[i] = trimSpace(parts[i])
	}

	fromEnd := func(n int) dto.Field {
		if len(parts) < n {
			return dto.Missing(dto.Unknown)
		}
		return dto.Found(parts[len(parts)-n], dto.Unknown)
	}
	return fromEnd(3), fromEnd(2), fromEnd(1)
}

func extractSize(block string) dto.Field {
	if m := sizeRegex.FindStringSubmatch(block); len(m) > 1 {
		return dto.Found(m[1], dto.NotFound)
	}
	return dto.Missing(dto.NotFound)
}

// extractTotal keeps the second of the two amounts that follow "Total".
func extractTotal(block string) dto.Field {
	if m := totalRegex.FindStringSubmatch(block); len(m) > 2 {
		return dto.Found(m[2], dto.NotFound)
	}
	return dto.Missing(dto.NotFound)
}

func extractPaymentMode(block string) dto.PaymentMode {
	if m := paymentModeRegex.FindStringSubmatch(block); len(m) > 1 {
		return dto.ParsePaymentMode(m[1])
	}
	return dto.ModeUnknown
}
