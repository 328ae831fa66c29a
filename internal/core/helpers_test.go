// ABOUTME: Shared fixtures for core tests
// ABOUTME: In-memory storage, a scripted random source and a settable clock
package core

import (
	"testing"
	"time"

	"github.com/harper/yaan/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Storage {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// fixedRandom always draws the same values
type fixedRandom struct {
	f float64
	n int
}

func (r fixedRandom) Float64() float64 { return r.f }

func (r fixedRandom) IntN(n int) int { return r.n % n }

// alwaysAsk passes every probability draw and picks the first option
var alwaysAsk = fixedRandom{f: 0, n: 0}

// neverAsk fails every probability draw
var neverAsk = fixedRandom{f: 0.99, n: 0}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)}
}
