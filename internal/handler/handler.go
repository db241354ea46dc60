// Package handler exposes the sync engine and the Gemini proxy over HTTP.
package handler

import (
	"context"
	"time"
)

// Cache is the part of *cache.RedisCache the handlers use. A nil Cache
// disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const jsonContentType = "application/json; charset=utf-8"

// Error codes returned in the "code" field of error bodies.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidRecord    = "INVALID_RECORD"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)
