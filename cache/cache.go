// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package cache keeps compiled kernels keyed by their source.
//
// Keys are 64-bit HighwayHash digests of the kernel name and source text.
// Concurrent requests for the same key share a single build.
package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/minio/highwayhash"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/internal/ctxlog"
)

// hashKey is the fixed HighwayHash key. Digests only need to be stable
// within a process.
var hashKey = []byte("clkernel/cache/highwayhash-key!!")

// Key identifies a kernel by name and source.
type Key uint64

// String formats the key as 16 hex digits.
func (k Key) String() string { return fmt.Sprintf("%016x", uint64(k)) }

// KeyOf returns the key of a kernel.
func KeyOf(name, source string) Key {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		panic(err) // key length is fixed at 32 bytes
	}
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(name)))
	h.Write(n[:])
	h.Write([]byte(name))
	h.Write([]byte(source))
	return Key(h.Sum64())
}

// Cache maps kernel keys to compiled kernels. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	kernels map[Key]backend.Kernel

	group  singleflight.Group
	hits   uint64
	builds uint64
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{kernels: make(map[Key]backend.Kernel)}
}

// Get returns the cached kernel for name and source.
func (c *Cache) Get(name, source string) (backend.Kernel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.kernels[KeyOf(name, source)]
	return k, ok
}

// GetOrBuild returns the cached kernel or builds it with compiler.
// Failed builds are not cached.
func (c *Cache) GetOrBuild(ctx context.Context, name, source string, compiler backend.Compiler) (backend.Kernel, error) {
	key := KeyOf(name, source)

	c.mu.Lock()
	if k, ok := c.kernels[key]; ok {
		c.hits++
		c.mu.Unlock()
		return k, nil
	}
	c.mu.Unlock()

	v, err, shared := c.group.Do(strconv.FormatUint(uint64(key), 16), func() (any, error) {
		c.mu.RLock()
		k, ok := c.kernels[key]
		c.mu.RUnlock()
		if ok {
			return k, nil
		}

		ctxlog.FromContext(ctx).Debug("building kernel", "kernel", name, "key", key.String())
		k, err := compiler.Build(ctx, source, name)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.kernels[key] = k
		c.builds++
		c.mu.Unlock()
		return k, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		ctxlog.FromContext(ctx).Debug("shared kernel build", "kernel", name)
	}
	return v.(backend.Kernel), nil
}

// Len returns the number of cached kernels.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.kernels)
}

// Stats returns the hit and build counters.
func (c *Cache) Stats() (hits, builds uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.builds
}

// Purge drops every cached kernel.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kernels = make(map[Key]backend.Kernel)
}
