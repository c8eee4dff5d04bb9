package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ai-or-human-service/internal/domain"
)

// ItemRepository keeps round items in process memory (useful for tests/demos).
type ItemRepository struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	items []domain.RoundItem
}

func NewItemRepository(seed ...domain.RoundItem) *ItemRepository {
	return &ItemRepository{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		items: append([]domain.RoundItem(nil), seed...),
	}
}

// Sample picks uniformly with replacement.
func (r *ItemRepository) Sample(_ context.Context) (domain.RoundItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return domain.RoundItem{}, domain.ErrNoContentAvailable
	}
	return r.items[r.rnd.Intn(len(r.items))], nil
}

func (r *ItemRepository) Insert(_ context.Context, item domain.RoundItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return nil
}

// LoadItems returns a copy of every item; it lets the Redis cache use this repository as its source.
func (r *ItemRepository) LoadItems(_ context.Context) ([]domain.RoundItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RoundItem(nil), r.items...), nil
}

// Len reports how many items are stored.
func (r *ItemRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
