// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package transport is the thin HTTP client the data-access services call
// through. It knows the backend base URL and the bearer token, nothing about
// caching; fetchers handed to the request coordinator close over it.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
)

// StatusError is returned for non-2xx responses. The body snippet is kept
// for error messages surfaced to the operator.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

type Client struct {
	base  string
	token string
	hc    *http.Client
}

type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(base string, opts ...Option) *Client {
	c := &Client{
		base: base,
		hc:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches path relative to the base URL and returns the raw body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post sends body to path and returns the raw response body.
func (c *Client) Post(ctx context.Context, path string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Ping checks the backend health endpoint with a short deadline.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := c.Get(ctx, "/health")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debugf("%s %s", method, c.base+path)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet(doc.Bytes())}
	}

	return doc.Bytes(), nil
}

func snippet(b []byte) string {
	const max = 160
	if len(b) > max {
		b = b[:max]
	}
	return string(bytes.TrimSpace(b))
}
