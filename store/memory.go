package store

import (
	"context"
	"sync"

	"github.com/Aashish23092/shipment-label-extractor/dto"
)

type MemoryStore struct {
	batches map[string]dto.Batch
	latest  string
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches: make(map[string]dto.Batch),
	}
}

func (s *MemoryStore) SaveBatch(ctx context.Context, batch dto.Batch) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batch.ID] = batch
	s.latest = batch.ID
	return nil
}

func (s *MemoryStore) GetBatch(ctx context.Context, id string) (dto.Batch, error) {
	select {
	case <-ctx.Done():
		return dto.Batch{}, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == LatestID {
		id = s.latest
	}
	batch, ok := s.batches[id]
	if !ok {
		return dto.Batch{}, dto.ErrBatchNotFound
	}
	return batch, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
