// Package remote implements the hosted collaborators of the organizer: a
// per-identity document record and the shared-library inbox. Backends are
// SQLite, PostgreSQL and Redis.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Record is the remote copy of one identity's document.
type Record struct {
	Identity  string
	Data      []byte
	UpdatedAt time.Time
}

// DocumentStore holds one serialized document per identity.
type DocumentStore interface {
	// Get returns the most recently updated record for identity, or
	// apperr.ErrNotFound.
	Get(ctx context.Context, identity string) (*Record, error)
	// Put overwrites the identity's record, inserting it when absent.
	Put(ctx context.Context, identity string, data []byte) error
}

// ShareStatus is the lifecycle state of a share.
type ShareStatus string

const (
	SharePending  ShareStatus = "pending"
	ShareSent     ShareStatus = "sent"
	ShareAccepted ShareStatus = "accepted"
	ShareDeclined ShareStatus = "declined"
)

// Open reports whether the share still awaits the recipient's decision.
func (s ShareStatus) Open() bool {
	return s == SharePending || s == ShareSent
}

// ParseShareStatus validates a share status string.
func ParseShareStatus(s string) (ShareStatus, error) {
	switch st := ShareStatus(s); st {
	case SharePending, ShareSent, ShareAccepted, ShareDeclined:
		return st, nil
	}
	return "", fmt.Errorf("unknown share status %q", s)
}

// Share is one library subset sent from one identity to another.
type Share struct {
	ID             string          `json:"id"`
	SenderID       string          `json:"sender_id"`
	SenderEmail    string          `json:"sender_email"`
	RecipientEmail string          `json:"recipient_email"`
	LibraryName    string          `json:"library_name"`
	LibraryIcon    string          `json:"library_icon"`
	LibraryData    json.RawMessage `json:"library_data"`
	Status         ShareStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	SeenAt         *time.Time      `json:"seen_at,omitempty"`
}

// ShareStore is the sharing collaborator.
type ShareStore interface {
	CreateShare(ctx context.Context, s Share) error
	// GetShare returns the share or apperr.ErrNotFound.
	GetShare(ctx context.Context, id string) (*Share, error)
	// ListShares returns the recipient's shares in the given statuses, newest first.
	ListShares(ctx context.Context, recipientEmail string, statuses ...ShareStatus) ([]Share, error)
	// UpdateShareStatus sets the status or returns apperr.ErrNotFound.
	UpdateShareStatus(ctx context.Context, id string, status ShareStatus) error
	// MarkSeen stamps seen_at when it is still unset.
	MarkSeen(ctx context.Context, id string, at time.Time) error
}

// Backend bundles both collaborators over one connection.
type Backend interface {
	DocumentStore
	ShareStore
	Close() error
}
