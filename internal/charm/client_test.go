// ABOUTME: Tests for the Charm preference client using an in-memory KV fake
// ABOUTME: Verifies key layout, JSON round trips, counters and deletion
package charm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/harper/yaan/internal/models"
)

type fakeKV struct {
	mu    sync.Mutex
	data  map[string][]byte
	syncs int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Set(key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (f *fakeKV) Get(key []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[string(key)]
	if !ok {
		return nil, badger.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Delete(key []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, string(key))
	return nil
}

func (f *fakeKV) Keys() ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys [][]byte
	for k := range f.data {
		keys = append(keys, []byte(k))
	}
	return keys, nil
}

func (f *fakeKV) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return nil
}

func (f *fakeKV) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = make(map[string][]byte)
	return nil
}

func (f *fakeKV) Close() error { return nil }

func newTestClient(autoSync bool) (*Client, *fakeKV) {
	fake := newFakeKV()
	return newClientWithStore(fake, &Config{Host: "localhost", DBName: "test", AutoSync: autoSync}), fake
}

func TestPreferenceKey(t *testing.T) {
	if got := PreferenceKey("u1", "user_facts"); got != "pref:u1:user_facts" {
		t.Errorf("PreferenceKey() = %q, want pref:u1:user_facts", got)
	}
	if got := UserPrefix("u1"); got != "pref:u1:" {
		t.Errorf("UserPrefix() = %q, want pref:u1:", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("CHARM_HOST", "")
	cfg := DefaultConfig()
	if cfg.Host != "charm.2389.dev" {
		t.Errorf("Host = %q, want charm.2389.dev", cfg.Host)
	}
	if cfg.DBName != "yaan" {
		t.Errorf("DBName = %q, want yaan", cfg.DBName)
	}
	if !cfg.AutoSync {
		t.Error("AutoSync should default to true")
	}
}

func TestClient_PreferenceRoundTrip(t *testing.T) {
	c, _ := newTestClient(false)
	ctx := context.Background()

	var facts models.UserFacts
	found, err := c.GetPreference(ctx, "u1", models.PrefUserFacts, &facts)
	if err != nil {
		t.Fatalf("GetPreference() error = %v", err)
	}
	if found {
		t.Error("GetPreference() on empty store should report not found")
	}

	want := models.UserFacts{Name: "Alice", Likes: []string{"python"}}
	if err := c.SetPreference(ctx, "u1", models.PrefUserFacts, want); err != nil {
		t.Fatalf("SetPreference() error = %v", err)
	}

	found, err = c.GetPreference(ctx, "u1", models.PrefUserFacts, &facts)
	if err != nil || !found {
		t.Fatalf("GetPreference() = %v, %v; want true, nil", found, err)
	}
	if diff := cmp.Diff(want, facts); diff != "" {
		t.Errorf("facts mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_IncrementCounter(t *testing.T) {
	c, _ := newTestClient(false)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.IncrementCounter(ctx, "u1", models.PrefTotalMessages); err != nil {
				t.Errorf("IncrementCounter() error = %v", err)
			}
		}()
	}
	wg.Wait()

	var total int
	if _, err := c.GetPreference(ctx, "u1", models.PrefTotalMessages, &total); err != nil {
		t.Fatalf("GetPreference() error = %v", err)
	}
	if total != 20 {
		t.Errorf("total = %d, want 20", total)
	}
}

func TestClient_DeletePreferences(t *testing.T) {
	c, _ := newTestClient(false)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := c.SetPreference(ctx, "u1", key, 1); err != nil {
			t.Fatalf("SetPreference(%s) error = %v", key, err)
		}
	}
	_ = c.SetPreference(ctx, "u2", "a", 1)

	if err := c.DeletePreferences(ctx, "u1", "a", "b", "missing"); err != nil {
		t.Fatalf("DeletePreferences() error = %v", err)
	}

	keys, err := c.ListKeys(UserPrefix("u1"))
	if err != nil {
		t.Fatalf("ListKeys() error = %v", err)
	}
	if diff := cmp.Diff([]string{"pref:u1:c"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	all, _ := c.ListKeys(PreferencePrefix)
	sort.Strings(all)
	if diff := cmp.Diff([]string{"pref:u1:c", "pref:u2:a"}, all); diff != "" {
		t.Errorf("all keys mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_AutoSyncOnWrite(t *testing.T) {
	c, fake := newTestClient(true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.SetPreference(ctx, "u1", fmt.Sprintf("k%d", i), i); err != nil {
			t.Fatalf("SetPreference() error = %v", err)
		}
	}
	if fake.syncs != 3 {
		t.Errorf("syncs = %d, want 3", fake.syncs)
	}
}

func TestClient_CanceledContext(t *testing.T) {
	c, _ := newTestClient(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.SetPreference(ctx, "u1", "k", 1); err == nil {
		t.Error("SetPreference() with canceled context should fail")
	}
}
