// ABOUTME: Charm-backed implementation of the preference store
// ABOUTME: Lets profile data follow the user across linked devices
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/yaan/internal/storage"
)

var _ storage.PreferenceStore = (*Client)(nil)

func isKeyNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}

// GetPreference decodes a stored preference into dest
func (c *Client) GetPreference(ctx context.Context, userID, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return c.GetJSON(PreferenceKey(userID, key), dest)
}

// SetPreference stores a preference as JSON
func (c *Client) SetPreference(ctx context.Context, userID, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.SetJSON(PreferenceKey(userID, key), value)
}

// IncrementCounter adds one to an integer preference.
// The read and write happen under the client lock so concurrent callers in
// this process never lose an update.
func (c *Client) IncrementCounter(ctx context.Context, userID, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := PreferenceKey(userID, key)
	data, err := c.getLocked(k)
	if err != nil {
		return 0, err
	}

	current := 0
	if data != nil {
		if err := json.Unmarshal(data, &current); err != nil {
			return 0, fmt.Errorf("failed to decode counter %s: %w", key, err)
		}
	}
	current++

	if err := c.setLocked(k, []byte(strconv.Itoa(current))); err != nil {
		return 0, err
	}
	return current, nil
}

// DeletePreferences removes the given keys for a user
func (c *Client) DeletePreferences(ctx context.Context, userID string, keys ...string) error {
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Delete(PreferenceKey(userID, key)); err != nil {
			return err
		}
	}
	return nil
}
