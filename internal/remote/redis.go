package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/starford/taborganizer/internal/apperr"
)

// DefaultKeyPrefix namespaces every Redis key of the organizer.
const DefaultKeyPrefix = "taborg"

func (r *Redis) documentKey(identity string) string { return r.prefix + ":doc:" + identity }
func (r *Redis) shareKey(id string) string          { return r.prefix + ":share:" + id }
func (r *Redis) inboxKey(email string) string       { return r.prefix + ":inbox:" + email }

type redisRecord struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Redis is a Backend storing JSON values in Redis. Each recipient's
// shares are indexed by a sorted set scored by creation time.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*Redis)(nil)

// OpenRedis connects to the server described by a redis:// URL. An empty
// prefix selects DefaultKeyPrefix.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("remote: parse redis url: %w", err)
	}
	return NewRedis(ctx, redis.NewClient(opts), prefix)
}

// NewRedis wraps an existing client after checking connectivity.
func NewRedis(ctx context.Context, client *redis.Client, prefix string) (*Redis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("remote: ping redis: %w", err)
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, identity string) (*Record, error) {
	raw, err := r.client.Get(ctx, r.documentKey(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("remote: document %s: %w", identity, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("remote: get document: %w", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("remote: decode document: %w", err)
	}
	return &Record{Identity: identity, Data: rec.Data, UpdatedAt: rec.UpdatedAt}, nil
}

func (r *Redis) Put(ctx context.Context, identity string, data []byte) error {
	raw, err := json.Marshal(redisRecord{Data: data, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("remote: encode document: %w", err)
	}
	if err := r.client.Set(ctx, r.documentKey(identity), raw, 0).Err(); err != nil {
		return fmt.Errorf("remote: put document: %w", err)
	}
	return nil
}

func (r *Redis) CreateShare(ctx context.Context, sh Share) error {
	raw, err := json.Marshal(sh)
	if err != nil {
		return fmt.Errorf("remote: encode share: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.shareKey(sh.ID), raw, 0)
		p.ZAdd(ctx, r.inboxKey(sh.RecipientEmail), redis.Z{Score: float64(sh.CreatedAt.UnixMilli()), Member: sh.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("remote: create share: %w", err)
	}
	return nil
}

func (r *Redis) GetShare(ctx context.Context, id string) (*Share, error) {
	raw, err := r.client.Get(ctx, r.shareKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("remote: share %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("remote: get share: %w", err)
	}
	var sh Share
	if err := json.Unmarshal(raw, &sh); err != nil {
		return nil, fmt.Errorf("remote: decode share: %w", err)
	}
	return &sh, nil
}

func (r *Redis) ListShares(ctx context.Context, recipientEmail string, statuses ...ShareStatus) ([]Share, error) {
	ids, err := r.client.ZRevRange(ctx, r.inboxKey(recipientEmail), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("remote: list shares: %w", err)
	}
	out := []Share{}
	for _, id := range ids {
		sh, err := r.GetShare(ctx, id)
		if err != nil {
			// Dangling index entry.
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, sh.Status) {
			continue
		}
		out = append(out, *sh)
	}
	return out, nil
}

func (r *Redis) UpdateShareStatus(ctx context.Context, id string, status ShareStatus) error {
	return r.modifyShare(ctx, id, func(sh *Share) { sh.Status = status })
}

func (r *Redis) MarkSeen(ctx context.Context, id string, at time.Time) error {
	return r.modifyShare(ctx, id, func(sh *Share) {
		if sh.SeenAt == nil {
			t := at.UTC()
			sh.SeenAt = &t
		}
	})
}

// modifyShare applies fn to a share under WATCH so concurrent updates
// retry instead of overwriting each other.
func (r *Redis) modifyShare(ctx context.Context, id string, fn func(*Share)) error {
	key := r.shareKey(id)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("remote: share %s: %w", id, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		var sh Share
		if err := json.Unmarshal(raw, &sh); err != nil {
			return fmt.Errorf("remote: decode share: %w", err)
		}
		fn(&sh)
		out, err := json.Marshal(sh)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}
	for range 3 {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("remote: update share: %w", err)
		}
		return err
	}
	return fmt.Errorf("remote: update share %s: %w", id, apperr.ErrConflict)
}

func hasStatus(list []ShareStatus, s ShareStatus) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}
	return false
}
