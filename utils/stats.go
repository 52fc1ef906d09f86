package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aashish23092/shipment-label-extractor/dto"
)

const rupeePrefix = "Rs."

// ParseAmount reads the number out of a "Rs.<amount>" total. Totals that
// cannot be parsed count as zero, matching how the price filter treats them.
func ParseAmount(total string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(total, rupeePrefix, "", 1)), 64)
	if err != nil {
		return 0
	}
	return amount
}

// FilterRecords returns the records matching every part of q, in order.
func FilterRecords(records []dto.ShipmentRecord, q dto.Query) []dto.ShipmentRecord {
	search := strings.ToLower(q.Search)
	out := []dto.ShipmentRecord{}

	for _, r := range records {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if q.Size != "" && r.Size.String() != q.Size {
			continue
		}
		price := ParseAmount(r.Total.String())
		if q.MinPrice != nil && price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && price > *q.MaxPrice {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r dto.ShipmentRecord, search string) bool {
	for _, v := range r.Values() {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

// orderKey identifies an order for duplicate detection.
func orderKey(r dto.ShipmentRecord) string {
	return strings.ToLower(strings.Join([]string{
		r.Name.String(),
		r.Address1.String(),
		r.Address2.String(),
		string(r.Mode),
	}, "|"))
}

// ComputeStats aggregates records for the dashboard. A repeated order key is
// counted once; each repeat of a COD order bumps CODDuplicateCount.
func ComputeStats(records []dto.ShipmentRecord) dto.Stats {
	stats := dto.Stats{
		TotalOrders: len(records),
		SizeCount:   map[string]int{},
	}

	var grandTotal float64
	seen := make(map[string]bool)

	for _, r := range records {
		stats.SizeCount[r.Size.String()]++

		if total := r.Total.String(); strings.HasPrefix(total, rupeePrefix) {
			grandTotal += ParseAmount(total)
		}

		switch r.Mode {
		case dto.ModeCOD:
			stats.CODCount++
		case dto.ModePrepaid:
			stats.PrepaidCount++
		}

		key := orderKey(r)
		if seen[key] {
			if r.Mode == dto.ModeCOD {
				stats.CODDuplicateCount++
			}
			continue
		}
		seen[key] = true
	}

	stats.UniqueOrders = len(seen)
	stats.CODUniqueOrders = stats.CODCount - stats.CODDuplicateCount
	stats.TotalPrice = fmt.Sprintf("%.2f", grandTotal)
	return stats
}
