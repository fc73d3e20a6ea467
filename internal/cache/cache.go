/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package cache

import (
	"strings"
	"time"
)

// TTL classes. Each data class gets its own store with its own expiry.
const (
	STATUS_TTL      = 60 * time.Second
	SHIP_SEARCH_TTL = time.Hour
	IMAGE_TTL       = time.Hour
)

// Cache is a keyed store where values older than the store's TTL read as absent.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

// Store holds one cache per data class and is owned by the composition root.
type Store[S, I, W any] struct {
	Status *MemoryCache[S]
	Images *MemoryCache[I]
	Ships  *MemoryCache[W]
}

// NewStore builds fresh caches with the standard TTL classes.
func NewStore[S, I, W any]() *Store[S, I, W] {
	return &Store[S, I, W]{
		Status: NewMemoryCache[S](STATUS_TTL),
		Images: NewMemoryCache[I](IMAGE_TTL),
		Ships:  NewMemoryCache[W](SHIP_SEARCH_TTL),
	}
}

// Key case-folds and trims free-text queries so equivalent lookups share an entry.
func Key(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
