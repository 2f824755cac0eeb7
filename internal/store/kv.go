package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/looper/internal/fault"
)

type sqliteNamespace struct {
	store *Store
	name  string
}

func (n *sqliteNamespace) op(verb string) string {
	return fmt.Sprintf("%s %s", verb, n.name)
}

// Get returns the value stored under key.
func (n *sqliteNamespace) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := n.store.db.QueryRowContext(ctx, `
		SELECT value FROM kv
		WHERE namespace = ? AND key = ?
	`, n.name, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fault.Storage(n.op("get"), err)
	}
	return []byte(value), true, nil
}

// Set writes value under key, replacing any previous value.
// Uses ON CONFLICT DO UPDATE so a rewrite is a single statement.
func (n *sqliteNamespace) Set(ctx context.Context, key string, value []byte) error {
	_, err := n.store.db.ExecContext(ctx, `
		INSERT INTO kv (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, n.name, key, string(value), n.store.clock.Now().UnixMilli())
	if err != nil {
		return fault.Storage(n.op("set"), err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (n *sqliteNamespace) Remove(ctx context.Context, key string) error {
	_, err := n.store.db.ExecContext(ctx, `
		DELETE FROM kv WHERE namespace = ? AND key = ?
	`, n.name, key)
	if err != nil {
		return fault.Storage(n.op("remove"), err)
	}
	return nil
}

// Keys returns every key in the namespace in byte order.
// Returns an empty slice (not nil) for an empty namespace.
func (n *sqliteNamespace) Keys(ctx context.Context) ([]string, error) {
	rows, err := n.store.db.QueryContext(ctx, `
		SELECT key FROM kv
		WHERE namespace = ?
		ORDER BY key COLLATE BINARY ASC
	`, n.name)
	if err != nil {
		return nil, fault.Storage(n.op("keys"), err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fault.Storage(n.op("keys"), err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Storage(n.op("keys"), err)
	}
	return keys, nil
}

// Clear deletes every key in the namespace.
func (n *sqliteNamespace) Clear(ctx context.Context) error {
	_, err := n.store.db.ExecContext(ctx, `
		DELETE FROM kv WHERE namespace = ?
	`, n.name)
	if err != nil {
		return fault.Storage(n.op("clear"), err)
	}
	return nil
}
