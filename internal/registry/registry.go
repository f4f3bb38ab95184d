// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package registry is the composition root. It builds the one Coordinator
// the process uses, the transport client and the services on top of it, and
// hands them to commands explicitly. Nothing in this repository reaches for
// a package-level singleton.
package registry

import (
	"context"
	"os"
	"time"

	"github.com/apex/log"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/config"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/menu"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/requestcache"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/stock"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/transport"
)

type Registry struct {
	Coordinator *requestcache.Coordinator
	Client      *transport.Client
	Menu        *menu.Service
	Stock       *stock.Service
}

// Health is what the health-check surface reports: backend reachability
// plus the coordinator's aggregate stats.
type Health struct {
	BackendOK  bool
	BackendErr string
	Cache      requestcache.Stats
}

// New builds the registry from pos.yaml, with sane defaults when no config
// file exists. Config keys (seconds): cache.ttl, cache.throttle,
// cache.sweep, transport.timeout; strings: transport.url, transport.token.
func New() *Registry {
	ttl, _ := config.GetInt("cache.ttl", 300)
	throttle, _ := config.GetInt("cache.throttle", 2)
	sweep, _ := config.GetInt("cache.sweep", 60)
	retries, _ := config.GetInt("cache.retries", 3)
	timeout, _ := config.GetInt("transport.timeout", 30)

	coord := requestcache.New(
		requestcache.WithDefaults(requestcache.Options{
			TTL:     time.Duration(ttl) * time.Second,
			Retries: retries,
			Timeout: time.Duration(timeout) * time.Second,
		}),
		requestcache.WithThrottleWindow(time.Duration(throttle)*time.Second),
		requestcache.WithSweepInterval(time.Duration(sweep)*time.Second),
	)

	base, _ := config.GetString("transport.url", "http://127.0.0.1:8787")
	token := os.Getenv("POS_API_TOKEN")
	if token == "" {
		token, _ = config.GetString("transport.token", "")
	}

	client := transport.New(base, transport.WithToken(token))
	log.Debugf("registry: backend %s", base)

	menuTTL, _ := config.GetInt("menu.ttl", ttl)
	stockTTL, _ := config.GetInt("stock.ttl", 30)

	return &Registry{
		Coordinator: coord,
		Client:      client,
		Menu:        menu.NewService(coord, client, menu.WithTTL(time.Duration(menuTTL)*time.Second)),
		Stock:       stock.NewService(coord, client, stock.WithTTL(time.Duration(stockTTL)*time.Second)),
	}
}

// HealthCheck pings the backend and snapshots the cache stats.
func (r *Registry) HealthCheck(ctx context.Context) Health {
	h := Health{Cache: r.Coordinator.Stats()}

	if err := r.Client.Ping(ctx); err != nil {
		h.BackendErr = err.Error()
		log.Warnf("backend health check failed: %v", err)
	} else {
		h.BackendOK = true
	}

	return h
}

// Close releases the coordinator's background resources.
func (r *Registry) Close() {
	r.Coordinator.Close()
}
