package counter

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/blob"
	"github.com/tonypconway/netlify-baseline-extension/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestStore(t *testing.T, shardCount int) *Store {
	t.Helper()

	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	store, err := New(blob.NewRedisStore(client, "test"), shardCount)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestNewRejectsInvalidShardCount(t *testing.T) {
	if _, err := New(nil, 0); err != ErrInvalidShardCount {
		t.Errorf("New(0 shards) error = %v, want ErrInvalidShardCount", err)
	}
}

func TestIncrementSumsAcrossShards(t *testing.T) {
	store := setupTestStore(t, 25)
	ctx := context.Background()
	day := DayKey(time.Now())

	// N increments land on random shards; the summed count must be
	// exactly N regardless of the shard distribution.
	const n = 200
	for i := 0; i < n; i++ {
		if err := store.Increment(ctx, day, "chrome", "119"); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
	}

	days, err := store.ReadRange(ctx, []string{day})
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("ReadRange() returned %d days, want 1", len(days))
	}

	combined := model.Flatten(days[0].Histograms)
	if got := combined["chrome"]["119"].Count; got != n {
		t.Errorf("Summed count = %d, want %d", got, n)
	}
}

func TestIncrementMultiplePairs(t *testing.T) {
	store := setupTestStore(t, 4)
	ctx := context.Background()
	day := DayKey(time.Now())

	pairs := []struct {
		browser string
		version string
		times   int
	}{
		{"chrome", "119", 8},
		{"firefox", "118", 2},
		{"safari_ios", "17.1", 5},
	}

	for _, p := range pairs {
		for i := 0; i < p.times; i++ {
			if err := store.Increment(ctx, day, p.browser, p.version); err != nil {
				t.Fatalf("Increment() error = %v", err)
			}
		}
	}

	days, err := store.ReadRange(ctx, []string{day})
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	combined := model.Flatten(days[0].Histograms)

	for _, p := range pairs {
		if got := combined[p.browser][p.version].Count; got != int64(p.times) {
			t.Errorf("%s/%s = %d, want %d", p.browser, p.version, got, p.times)
		}
	}
}

func TestReadRangeEmptyDay(t *testing.T) {
	store := setupTestStore(t, 4)
	ctx := context.Background()

	days, err := store.ReadRange(ctx, []string{"2020-01-01"})
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("ReadRange() returned %d entries, want 1", len(days))
	}
	if len(days[0].Histograms) != 0 {
		t.Errorf("Empty day returned %d histograms, want 0", len(days[0].Histograms))
	}
}

func TestPruneExpired(t *testing.T) {
	store := setupTestStore(t, 4)
	ctx := context.Background()

	// Buckets for 10 consecutive days ending today
	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		day := DayKey(now.AddDate(0, 0, -i))
		if err := store.Increment(ctx, day, "chrome", "119"); err != nil {
			t.Fatalf("Increment(%s) error = %v", day, err)
		}
	}

	if err := store.PruneExpired(ctx, 7); err != nil {
		t.Fatalf("PruneExpired() error = %v", err)
	}

	keys, err := store.blob.List(ctx, countsPrefix)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	remaining := map[string]bool{}
	for _, key := range keys {
		remaining[key[len(countsPrefix):len(countsPrefix)+10]] = true
	}

	if len(remaining) != 7 {
		t.Fatalf("%d distinct dates remain after prune, want 7 (%v)", len(remaining), remaining)
	}

	// Always the 7 most recent relative to prune time
	want := RecentDays(7)
	sort.Strings(want)
	for _, day := range want {
		if !remaining[day] {
			t.Errorf("Recent day %s was pruned", day)
		}
	}
}

func TestPruneExpiredIdempotent(t *testing.T) {
	store := setupTestStore(t, 4)
	ctx := context.Background()

	day := DayKey(time.Now().UTC().AddDate(0, 0, -30))
	if err := store.Increment(ctx, day, "chrome", "119"); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}

	// Concurrent or repeated prunes must not error on missing keys
	if err := store.PruneExpired(ctx, 7); err != nil {
		t.Fatalf("First PruneExpired() error = %v", err)
	}
	if err := store.PruneExpired(ctx, 7); err != nil {
		t.Errorf("Second PruneExpired() error = %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	store := setupTestStore(t, 4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		day := DayKey(time.Now().UTC().AddDate(0, 0, -i))
		if err := store.Increment(ctx, day, "chrome", "119"); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
	}

	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	keys, err := store.blob.List(ctx, countsPrefix)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("%d keys remain after DeleteAll, want 0", len(keys))
	}
}

func TestRecentDays(t *testing.T) {
	days := RecentDays(7)
	if len(days) != 7 {
		t.Fatalf("RecentDays(7) returned %d days", len(days))
	}
	if days[0] != DayKey(time.Now()) {
		t.Errorf("RecentDays()[0] = %s, want today", days[0])
	}
	seen := map[string]bool{}
	for _, day := range days {
		if seen[day] {
			t.Errorf("Duplicate day %s", day)
		}
		seen[day] = true
	}
}
