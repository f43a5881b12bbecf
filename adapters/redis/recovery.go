// Package redis keeps outstanding recovery entries in Redis so they survive
// restarts and are shared between instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lborres/evently/core"
)

const (
	defaultPrefix = "recovery:"
	// attempts made by RecordFailedAttempt before giving up on a contended key
	maxTxRetries = 5
)

type RecoveryStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ core.RecoveryStore = (*RecoveryStore)(nil)

func NewRecoveryStore(client redis.UniversalClient) *RecoveryStore {
	return &RecoveryStore{
		client: client,
		prefix: defaultPrefix,
		now:    time.Now,
	}
}

// Connect opens a client for addr and pings it
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping redis: %w", core.ErrPersistence, err)
	}
	return client, nil
}

func (r *RecoveryStore) key(email string) string {
	return r.prefix + email
}

// Put overwrites the entry for email. The key expires with the entry; an
// entry that is already expired is dropped instead of written.
func (r *RecoveryStore) Put(ctx context.Context, email string, entry *core.RecoveryEntry) error {
	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = entry.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Remove(ctx, email)
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: marshal recovery entry: %w", core.ErrPersistence, err)
	}

	if err := r.client.Set(ctx, r.key(email), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: store recovery entry: %w", core.ErrPersistence, err)
	}
	return nil
}

func (r *RecoveryStore) Get(ctx context.Context, email string) (*core.RecoveryEntry, error) {
	val, err := r.client.Get(ctx, r.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load recovery entry: %w", core.ErrPersistence, err)
	}

	var entry core.RecoveryEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("%w: unmarshal recovery entry: %w", core.ErrPersistence, err)
	}

	// Redis expiry has second granularity
	if entry.Expired(r.now()) {
		return nil, core.ErrEntryNotFound
	}
	return &entry, nil
}

func (r *RecoveryStore) Remove(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: remove recovery entry: %w", core.ErrPersistence, err)
	}
	return nil
}

// RecordFailedAttempt counts a wrong passcode inside a WATCH transaction, so
// a concurrent Put or attempt aborts and retries instead of being overwritten.
func (r *RecoveryStore) RecordFailedAttempt(ctx context.Context, email, passcode string, limit int) (int, error) {
	key := r.key(email)
	var attempts int

	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return core.ErrEntryNotFound
		}
		if err != nil {
			return err
		}

		var entry core.RecoveryEntry
		if err := json.Unmarshal(val, &entry); err != nil {
			return fmt.Errorf("unmarshal recovery entry: %w", err)
		}
		if entry.Passcode != passcode || entry.Expired(r.now()) {
			return core.ErrEntryNotFound
		}

		entry.Attempts++
		attempts = entry.Attempts

		if limit > 0 && entry.Attempts >= limit {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal recovery entry: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return attempts, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, core.ErrEntryNotFound):
			return 0, core.ErrEntryNotFound
		default:
			return 0, fmt.Errorf("%w: record recovery attempt: %w", core.ErrPersistence, err)
		}
	}
	return 0, fmt.Errorf("%w: record recovery attempt: key contended", core.ErrPersistence)
}
