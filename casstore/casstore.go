// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package casstore keeps shader text in memory, addressed by its SHA-256 digest.
//
// A Store can replace data URIs as the reference format when shader sources
// are written to separate files by the exporter: the reference is the digest,
// and the caller persists the blobs it needs.
package casstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/webglsl/shader"
)

// Scheme prefixes every reference produced by a Store.
const Scheme = "sha256:"

// ErrNotFound is returned by Decode for a well-formed reference with no blob.
var ErrNotFound = errors.New("casstore: blob not found")

// Store is a content-addressed blob store. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	blobs    map[string]string
	fallback shader.Codec
}

var _ shader.Codec = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{blobs: make(map[string]string)}
}

// NewWithFallback creates an empty Store that hands references without the
// sha256: scheme to fallback for decoding.
func NewWithFallback(fallback shader.Codec) *Store {
	s := New()
	s.fallback = fallback
	return s
}

// Key returns the reference of text without storing it.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return Scheme + hex.EncodeToString(sum[:])
}

// Encode stores text and returns its reference. Storing the same text twice
// returns the same reference.
func (s *Store) Encode(text string) (string, error) {
	key := Key(text)
	s.mu.Lock()
	s.blobs[key] = text
	s.mu.Unlock()
	return key, nil
}

// Decode returns the text stored under reference.
func (s *Store) Decode(reference string) (string, error) {
	digest, ok := strings.CutPrefix(reference, Scheme)
	if !ok && s.fallback != nil {
		return s.fallback.Decode(reference)
	}
	if !ok || len(digest) != 2*sha256.Size {
		return "", fmt.Errorf("casstore: malformed reference %q", reference)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", fmt.Errorf("casstore: malformed reference %q: %w", reference, err)
	}

	s.mu.RLock()
	text, ok := s.blobs[reference]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, reference)
	}
	return text, nil
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Blobs returns a snapshot of all stored blobs keyed by reference.
func (s *Store) Blobs() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.blobs))
	for k, v := range s.blobs {
		out[k] = v
	}
	return out
}
