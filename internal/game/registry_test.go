package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeTable struct {
	last   time.Time
	busy   bool
	closed atomic.Int32
}

func (f *fakeTable) LastActivity() time.Time { return f.last }
func (f *fakeTable) Busy() bool              { return f.busy }
func (f *fakeTable) Close()                  { f.closed.Add(1) }

func newFakeRegistry(last time.Time) (*Registry[*fakeTable], *atomic.Int32) {
	var built atomic.Int32
	r := NewRegistry(func(userID int64) *fakeTable {
		built.Add(1)
		return &fakeTable{last: last}
	})
	return r, &built
}

func TestRegistryGetOrCreate(t *testing.T) {
	r, built := newFakeRegistry(time.Now())

	first, created := r.GetOrCreate(42)
	assert.True(t, created)

	again, created := r.GetOrCreate(42)
	assert.False(t, created)
	assert.Same(t, first, again)

	got, ok := r.Get(42)
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = r.Get(7)
	assert.False(t, ok)

	assert.Equal(t, 1, r.Count())
	assert.Equal(t, int32(1), built.Load())
}

func TestRegistryRemove(t *testing.T) {
	r, _ := newFakeRegistry(time.Now())
	table, _ := r.GetOrCreate(1)

	require.NoError(t, r.Remove(1))
	assert.Equal(t, int32(1), table.closed.Load())
	assert.Equal(t, 0, r.Count())

	assert.ErrorIs(t, r.Remove(1), ErrTableNotFound)
}

func TestRegistrySweep(t *testing.T) {
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	r, _ := newFakeRegistry(now)

	fresh, _ := r.GetOrCreate(1)
	stale, _ := r.GetOrCreate(2)
	stale.last = now.Add(-2 * time.Hour)
	rolling, _ := r.GetOrCreate(3)
	rolling.last = now.Add(-2 * time.Hour)
	rolling.busy = true

	removed := r.Sweep(now, time.Hour)

	assert.Equal(t, []int64{2}, removed)
	assert.Equal(t, []int64{1, 3}, r.UserIDs())
	assert.Equal(t, int32(1), stale.closed.Load())
	assert.Zero(t, fresh.closed.Load())
	assert.Zero(t, rolling.closed.Load())
}

func TestRegistryCloseAll(t *testing.T) {
	r, _ := newFakeRegistry(time.Now())
	var tables []*fakeTable
	for id := int64(1); id <= 5; id++ {
		tbl, _ := r.GetOrCreate(id)
		tables = append(tables, tbl)
	}

	r.CloseAll()

	assert.Zero(t, r.Count())
	for _, tbl := range tables {
		assert.Equal(t, int32(1), tbl.closed.Load())
	}
}

// TestRegistrySingleTablePerUserProperty checks that concurrent first
// requests for the same player agree on one table.
func TestRegistrySingleTablePerUserProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r, built := newFakeRegistry(time.Now())
		users := rapid.IntRange(1, 5).Draw(t, "users")
		callers := rapid.IntRange(2, 20).Draw(t, "callers")

		var wg sync.WaitGroup
		var createdCount atomic.Int32
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, created := r.GetOrCreate(int64(i % users)); created {
					createdCount.Add(1)
				}
			}(i)
		}
		wg.Wait()

		want := users
		if callers < users {
			want = callers
		}
		if r.Count() != want {
			t.Fatalf("expected %d tables, got %d", want, r.Count())
		}
		if int(built.Load()) != want || int(createdCount.Load()) != want {
			t.Fatalf("factory ran %d times, created reported %d, want %d",
				built.Load(), createdCount.Load(), want)
		}
	})
}
