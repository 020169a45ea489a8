// Package storage defines the local durable cache: a string key-value
// store whose values are serialized JSON.
package storage

import "errors"

// ErrQuotaExceeded is returned when a write would exceed the cache quota.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Cache is the interface for local key-value persistence. The document
// lives under one key; other keys belong to other owners and are left alone.
type Cache interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set durably replaces the value stored under key.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys lists the stored keys in lexical order.
	Keys() ([]string, error)
}
