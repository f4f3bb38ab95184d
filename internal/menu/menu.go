// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package menu looks up menu data (categories, items, addons) through the
// request coordinator. It owns the cache keys for the menu: namespace; keys
// are stable encodings of the query inputs, so identical queries always
// coalesce.
package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/requestcache"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/transport"
)

type Category struct {
	ID        string
	Name      string
	SortOrder int64
}

type Item struct {
	ID         string
	Name       string
	CategoryID string
	Price      float64
	Available  bool
}

type Addon struct {
	ID          string
	Name        string
	Price       float64
	MaxQuantity int64
}

type Service struct {
	coord  *requestcache.Coordinator
	client *transport.Client
	ttl    time.Duration
}

type Option func(*Service)

// WithTTL overrides the default freshness window for menu lookups.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func NewService(coord *requestcache.Coordinator, client *transport.Client, opts ...Option) *Service {
	s := &Service{
		coord:  coord,
		client: client,
		ttl:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns the menu categories, cached under "menu:categories".
func (s *Service) Categories(ctx context.Context, opts ...requestcache.Option) ([]Category, error) {
	v, err := s.coord.Execute(ctx, "menu:categories", func(ctx context.Context) (any, error) {
		raw, err := s.client.Get(ctx, "/menu/categories")
		if err != nil {
			return nil, err
		}
		return parseCategories(raw), nil
	}, s.options(opts)...)
	if err != nil {
		return nil, err
	}
	return v.([]Category), nil
}

// Items returns the items of one category, cached under
// "menu:items:<categoryID>".
func (s *Service) Items(ctx context.Context, categoryID string, opts ...requestcache.Option) ([]Item, error) {
	key := fmt.Sprintf("menu:items:%s", categoryID)
	path := fmt.Sprintf("/menu/categories/%s/items", categoryID)

	v, err := s.coord.Execute(ctx, key, func(ctx context.Context) (any, error) {
		raw, err := s.client.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		return parseItems(raw), nil
	}, s.options(opts)...)
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}

// Item returns a single item, cached under "menu:item:<id>".
func (s *Service) Item(ctx context.Context, id string, opts ...requestcache.Option) (Item, error) {
	key := fmt.Sprintf("menu:item:%s", id)
	path := fmt.Sprintf("/menu/items/%s", id)

	v, err := s.coord.Execute(ctx, key, func(ctx context.Context) (any, error) {
		raw, err := s.client.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		return parseItem(gjson.GetBytes(raw, "item")), nil
	}, s.options(opts)...)
	if err != nil {
		return Item{}, err
	}
	return v.(Item), nil
}

// Addons returns the addons available for an item, cached under
// "menu:addons:<itemID>".
func (s *Service) Addons(ctx context.Context, itemID string, opts ...requestcache.Option) ([]Addon, error) {
	key := fmt.Sprintf("menu:addons:%s", itemID)
	path := fmt.Sprintf("/menu/items/%s/addons", itemID)

	v, err := s.coord.Execute(ctx, key, func(ctx context.Context) (any, error) {
		raw, err := s.client.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		return parseAddons(raw), nil
	}, s.options(opts)...)
	if err != nil {
		return nil, err
	}
	return v.([]Addon), nil
}

// InvalidateAll drops every cached menu entry and returns the count. The
// next lookup for any menu key re-fetches regardless of remaining TTL.
func (s *Service) InvalidateAll() int {
	return s.coord.Invalidate(requestcache.Substring("menu:"))
}

// Warm pre-populates the hot keys: the category list, then every category's
// items concurrently. Used at station start-of-day.
func (s *Service) Warm(ctx context.Context) error {
	cats, err := s.Categories(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, cat := range cats {
		g.Go(func() error {
			_, err := s.Items(ctx, cat.ID)
			return err
		})
	}
	return g.Wait()
}

func (s *Service) options(opts []requestcache.Option) []requestcache.Option {
	return append([]requestcache.Option{requestcache.WithTTL(s.ttl)}, opts...)
}

func parseCategories(raw []byte) []Category {
	var out []Category
	gjson.GetBytes(raw, "categories").ForEach(func(_, v gjson.Result) bool {
		out = append(out, Category{
			ID:        v.Get("id").String(),
			Name:      v.Get("name").String(),
			SortOrder: v.Get("sort_order").Int(),
		})
		return true
	})
	return out
}

func parseItems(raw []byte) []Item {
	var out []Item
	gjson.GetBytes(raw, "items").ForEach(func(_, v gjson.Result) bool {
		out = append(out, parseItem(v))
		return true
	})
	return out
}

func parseItem(v gjson.Result) Item {
	return Item{
		ID:         v.Get("id").String(),
		Name:       v.Get("name").String(),
		CategoryID: v.Get("category_id").String(),
		Price:      v.Get("price").Float(),
		Available:  v.Get("available").Bool(),
	}
}

func parseAddons(raw []byte) []Addon {
	var out []Addon
	gjson.GetBytes(raw, "addons").ForEach(func(_, v gjson.Result) bool {
		out = append(out, Addon{
			ID:          v.Get("id").String(),
			Name:        v.Get("name").String(),
			Price:       v.Get("price").Float(),
			MaxQuantity: v.Get("max_quantity").Int(),
		})
		return true
	})
	return out
}
