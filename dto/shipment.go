package dto

import (
	"encoding/json"
	"strings"
)

// Absence names why a label field has no value. Its string form is the
// placeholder written to exports in place of the value.
type Absence string

const (
	Present  Absence = ""
	None     Absence = "None"
	Unknown  Absence = "Unknown"
	NotFound Absence = "Not found"
)

// Field is a best-effort extracted value. Either Value is set, or Absent
// carries the reason it could not be extracted.
type Field struct {
	Value  string
	Absent Absence
}

// Found wraps an extracted value. An empty value is stored as absent.
func Found(value string, ifEmpty Absence) Field {
	if value == "" {
		return Field{Absent: ifEmpty}
	}
	return Field{Value: value}
}

// Missing returns a field absent for the given reason.
func Missing(reason Absence) Field {
	return Field{Absent: reason}
}

func (f Field) IsPresent() bool {
	return f.Absent == Present
}

// String returns the value, or the absence placeholder.
func (f Field) String() string {
	if f.Absent != Present {
		return string(f.Absent)
	}
	return f.Value
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = ParseField(s)
	return nil
}

// ParseField reads a field back from its string form, e.g. a spreadsheet cell.
func ParseField(s string) Field {
	switch Absence(s) {
	case None, Unknown, NotFound:
		return Field{Absent: Absence(s)}
	case Present:
		return Field{Absent: Unknown}
	}
	return Field{Value: s}
}

// PaymentMode is how the order is paid for.
type PaymentMode string

const (
	ModeCOD     PaymentMode = "COD"
	ModePrepaid PaymentMode = "PREPAID"
	ModeUnknown PaymentMode = "UNKNOWN"
)

// ParsePaymentMode normalizes a mode label; anything unrecognized is UNKNOWN.
func ParsePaymentMode(s string) PaymentMode {
	switch PaymentMode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeCOD:
		return ModeCOD
	case ModePrepaid:
		return ModePrepaid
	}
	return ModeUnknown
}

// Sizes is the garment size vocabulary found on label SKU tables.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL", "4XL", "5XL", "6XL", "7XL", "8XL"}

// IsSize reports whether s is in Sizes, ignoring case.
func IsSize(s string) bool {
	for _, size := range Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}

// ShipmentRecord is one shipment parsed from a "Customer Address" block.
type ShipmentRecord struct {
	Name     Field       `json:"name"`
	Phone    Field       `json:"phone"`
	Address1 Field       `json:"address1"`
	Address2 Field       `json:"address2"`
	City     Field       `json:"city"`
	State    Field       `json:"state"`
	Pincode  Field       `json:"pincode"`
	Size     Field       `json:"size"`
	Total    Field       `json:"total"`
	Mode     PaymentMode `json:"mode"`
}

// Values returns the record fields in export column order, without the index.
func (r ShipmentRecord) Values() []string {
	return []string{
		r.Name.String(),
		r.Phone.String(),
		r.Address1.String(),
		r.Address2.String(),
		r.City.String(),
		r.State.String(),
		r.Pincode.String(),
		r.Size.String(),
		r.Total.String(),
		string(r.Mode),
	}
}
