// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package stock looks up and updates stock levels. Levels change often, so
// lookups carry a short TTL; updates write through the transport and then
// invalidate the affected cache entry so the next read is fresh.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/requestcache"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/transport"
)

const keyPrefix = "stock:item:"

type Level struct {
	ItemID    string
	Quantity  int64
	UpdatedAt time.Time
}

type Service struct {
	coord  *requestcache.Coordinator
	client *transport.Client
	ttl    time.Duration
}

type Option func(*Service)

// WithTTL overrides the default freshness window for level lookups.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func NewService(coord *requestcache.Coordinator, client *transport.Client, opts ...Option) *Service {
	s := &Service{
		coord:  coord,
		client: client,
		ttl:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Level returns the stock level for one item, cached under
// "stock:item:<id>".
func (s *Service) Level(ctx context.Context, itemID string, opts ...requestcache.Option) (Level, error) {
	key := keyPrefix + itemID
	path := fmt.Sprintf("/stock/items/%s", itemID)

	v, err := s.coord.Execute(ctx, key, func(ctx context.Context) (any, error) {
		raw, err := s.client.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		return parseLevel(raw), nil
	}, append([]requestcache.Option{requestcache.WithTTL(s.ttl)}, opts...)...)
	if err != nil {
		return Level{}, err
	}
	return v.(Level), nil
}

// SetLevel writes a new quantity for the item and invalidates its cache
// entry. A lookup already in flight when the write lands may still
// repopulate the cache with the pre-write level for up to one TTL; callers
// needing read-your-write should Level with force afterwards.
func (s *Service) SetLevel(ctx context.Context, itemID string, quantity int64) (Level, error) {
	body, err := json.Marshal(map[string]int64{"quantity": quantity})
	if err != nil {
		return Level{}, err
	}

	raw, err := s.client.Post(ctx, fmt.Sprintf("/stock/items/%s", itemID), body)
	if err != nil {
		return Level{}, fmt.Errorf("failed to update stock for %s: %w", itemID, err)
	}

	s.coord.Invalidate(requestcache.Substring(keyPrefix + itemID))
	return parseLevel(raw), nil
}

// SubscribeLevels calls fn whenever any item's level is freshly fetched.
// Returns the unsubscribe function.
func (s *Service) SubscribeLevels(fn func(itemID string, level Level)) func() {
	return s.coord.Subscribe(requestcache.Substring(keyPrefix), func(key string, value any) {
		level, ok := value.(Level)
		if !ok {
			return
		}
		fn(strings.TrimPrefix(key, keyPrefix), level)
	})
}

func parseLevel(raw []byte) Level {
	v := gjson.ParseBytes(raw)
	return Level{
		ItemID:    v.Get("item_id").String(),
		Quantity:  v.Get("quantity").Int(),
		UpdatedAt: v.Get("updated_at").Time(),
	}
}
