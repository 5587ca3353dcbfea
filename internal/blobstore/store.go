// Package blobstore provides an ephemeral, content-addressed, in-memory byte
// store. It stands in for the file/template backend a real orchestrator would
// carry: compiled file artifacts land here on export, and deployment handlers
// read and upload against it through their wired callbacks.
//
// The store is created fresh per test session and cleared between tests. It is
// backed by a concurrent map because handler callbacks share it with the
// harness, but the harness itself is single-writer.
package blobstore

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Store is an in-memory blob store keyed by opaque identifiers, typically
// content hashes produced by Hash.
type Store struct {
	blobs cmap.ConcurrentMap[string, []byte]
}

// New creates a new, empty blob store.
func New() *Store {
	return &Store{blobs: cmap.New[[]byte]()}
}

// Hash returns the content-addressed key for a payload.
func Hash(content []byte) string {
	sum := sha1.Sum(content)
	return "hash:" + hex.EncodeToString(sum[:])
}

// Put stores a blob under the given key. Overwriting an existing key is
// refused unless allowOverwrite is set.
func (s *Store) Put(key string, content []byte, allowOverwrite bool) error {
	if !allowOverwrite && s.blobs.Has(key) {
		return fmt.Errorf("key %s already stored in blobs", key)
	}
	s.blobs.Set(key, content)
	return nil
}

// Get returns the blob stored under key and whether it exists.
func (s *Store) Get(key string) ([]byte, bool) {
	return s.blobs.Get(key)
}

// Stat reports whether a blob exists under key.
func (s *Store) Stat(key string) bool {
	return s.blobs.Has(key)
}

// Keys returns the identifiers of every stored blob.
func (s *Store) Keys() []string {
	return s.blobs.Keys()
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	return s.blobs.Count()
}

// Reset drops every stored blob.
func (s *Store) Reset() {
	s.blobs.Clear()
}
