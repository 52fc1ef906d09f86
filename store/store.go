package store

import (
	"context"
	"fmt"

	"github.com/Aashish23092/shipment-label-extractor/dto"
)

// LatestID addresses the most recently saved batch.
const LatestID = "latest"

// BatchStore keeps extraction results. Saving a batch makes it the latest
// result set; older batches stay reachable by id.
type BatchStore interface {
	SaveBatch(ctx context.Context, batch dto.Batch) error
	// GetBatch returns dto.ErrBatchNotFound for unknown ids.
	GetBatch(ctx context.Context, id string) (dto.Batch, error)
	Close() error
}

// New opens the store selected by driver.
func New(driver, sqlitePath string) (BatchStore, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	}
	return nil, fmt.Errorf("unknown store driver: %s", driver)
}
