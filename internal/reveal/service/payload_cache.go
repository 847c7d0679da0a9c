// Package service holds the in-memory parts of the reveal workflow: the short lived cache of
// verified payloads waiting to be redeemed and the progress reporter for long running requests.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

// PayloadCache keeps verified payloads keyed by reveal token hash until they are taken or expire.
// Evicted payloads are zeroed.
type PayloadCache struct {
	lru *expirable.LRU[string, *revealDomain.Payload]
}

// NewPayloadCache creates a cache holding at most size payloads for ttl each.
func NewPayloadCache(size int, ttl time.Duration) *PayloadCache {
	if size <= 0 {
		size = 1024
	}
	onEvict := func(_ string, payload *revealDomain.Payload) {
		payload.Zero()
	}
	return &PayloadCache{lru: expirable.NewLRU(size, onEvict, ttl)}
}

// Put stores payload under tokenHash.
func (c *PayloadCache) Put(tokenHash string, payload *revealDomain.Payload) {
	c.lru.Add(tokenHash, payload)
}

// Take removes the payload stored under tokenHash and returns a copy of it. The cached original
// is zeroed.
func (c *PayloadCache) Take(tokenHash string) (*revealDomain.Payload, bool) {
	payload, ok := c.lru.Peek(tokenHash)
	if !ok {
		return nil, false
	}
	clone := payload.Clone()
	c.lru.Remove(tokenHash)
	return clone, true
}

// Len returns the number of cached payloads.
func (c *PayloadCache) Len() int {
	return c.lru.Len()
}

// Purge zeroes and drops every cached payload.
func (c *PayloadCache) Purge() {
	c.lru.Purge()
}
