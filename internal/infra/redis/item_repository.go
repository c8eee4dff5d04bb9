package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ai-or-human-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ItemSource is the durable item store behind the cache (Postgres, memory).
type ItemSource interface {
	LoadItems(ctx context.Context) ([]domain.RoundItem, error)
	Insert(ctx context.Context, item domain.RoundItem) error
}

// ItemRepository caches the whole item pool in a Redis set and samples with SRANDMEMBER.
// Items are stored as JSON members of SADD aihuman:items; a miss reloads from the source.
type ItemRepository struct {
	client *redis.Client
	source ItemSource
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewItemRepository(client *redis.Client, source ItemSource, ttl time.Duration) *ItemRepository {
	return &ItemRepository{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ItemRepository) Sample(ctx context.Context) (domain.RoundItem, error) {
	raw, err := r.client.SRandMember(ctx, itemsKey()).Result()
	if err == nil {
		return decodeItem(raw)
	}
	if !errors.Is(err, redis.Nil) {
		return domain.RoundItem{}, fmt.Errorf("sample cached item: %w", err)
	}

	result, err, _ := r.sf.Do(itemsKey(), func() (interface{}, error) {
		return r.fill(ctx)
	})
	if err != nil {
		return domain.RoundItem{}, err
	}
	items := result.([]domain.RoundItem)
	if len(items) == 0 {
		return domain.RoundItem{}, domain.ErrNoContentAvailable
	}
	r.mu.Lock()
	item := items[r.rnd.Intn(len(items))]
	r.mu.Unlock()
	return item, nil
}

// Insert writes through to the source, bumps the pool version and drops the cached pool.
func (r *ItemRepository) Insert(ctx context.Context, item domain.RoundItem) error {
	if err := r.source.Insert(ctx, item); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, itemsVersionKey())
		pipe.Del(ctx, itemsKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate item cache: %w", err)
	}
	return nil
}

// fill loads the pool from the source and caches it. The version key is watched
// across the load, so a fill that raced an Insert leaves the cache empty.
func (r *ItemRepository) fill(ctx context.Context) ([]domain.RoundItem, error) {
	var items []domain.RoundItem
	var loadErr error
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		items, loadErr = r.source.LoadItems(ctx)
		if loadErr != nil || len(items) == 0 {
			return nil
		}

		members := make([]interface{}, 0, len(items))
		for _, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("encode item %s: %w", item.ID, err)
			}
			members = append(members, string(data))
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, itemsKey())
			pipe.SAdd(ctx, itemsKey(), members...)
			if ttl := r.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, itemsKey(), ttl)
			}
			return nil
		})
		return err
	}, itemsVersionKey())
	if loadErr != nil {
		return nil, fmt.Errorf("load items: %w", loadErr)
	}
	if err != nil && items == nil {
		return nil, fmt.Errorf("cache items: %w", err)
	}
	// A skipped or failed cache write still lets this caller play from the loaded items.
	return items, nil
}

func (r *ItemRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func decodeItem(raw string) (domain.RoundItem, error) {
	var item domain.RoundItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return domain.RoundItem{}, fmt.Errorf("decode cached item: %w", err)
	}
	return item, nil
}
