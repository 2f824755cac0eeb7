package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/looper/internal/fault"
)

// marshalValue converts v to JSON TEXT for storage.
// HTML escaping is disabled so symbols and puzzle text are stored as written.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// GetJSON reads key from ns and decodes it into a T.
// A missing key returns the zero T and ok == false.
func GetJSON[T any](ctx context.Context, ns Namespace, key string) (T, bool, error) {
	var v T
	data, ok, err := ns.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fault.Storage("decode "+key, fmt.Errorf("unmarshal: %w", err))
	}
	return v, true, nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, ns Namespace, key string, v any) error {
	data, err := marshalValue(v)
	if err != nil {
		return fault.Storage("encode "+key, fmt.Errorf("marshal: %w", err))
	}
	return ns.Set(ctx, key, data)
}
