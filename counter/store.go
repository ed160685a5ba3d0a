// Package counter maintains the sharded, date-partitioned browser
// histograms in the blob store.
package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/blob"
	"github.com/tonypconway/netlify-baseline-extension/model"

	"github.com/rs/zerolog/log"
)

const countsPrefix = "counts/"

var (
	// ErrInvalidShardCount is returned when a store is constructed with a
	// non-positive shard count.
	ErrInvalidShardCount = errors.New("counter: shard count must be positive")
)

// Store is the counter store: daily histogram buckets split across a fixed
// number of shards. One shard is one blob document; the shard for each
// increment is chosen uniformly at random, so a day's total is the sum
// over all of its shards.
type Store struct {
	blob       blob.Store
	shardCount int
}

// New creates a counter store over the given blob store.
func New(blobStore blob.Store, shardCount int) (*Store, error) {
	if shardCount <= 0 {
		return nil, ErrInvalidShardCount
	}
	return &Store{
		blob:       blobStore,
		shardCount: shardCount,
	}, nil
}

// DayKey formats a time as the UTC calendar day used in counter keys.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// RecentDays returns the n most recent UTC calendar days including today,
// most recent first.
func RecentDays(n int) []string {
	days := make([]string, 0, n)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		days = append(days, DayKey(now.AddDate(0, 0, -i)))
	}
	return days
}

func shardKey(day string, shard int) string {
	return fmt.Sprintf("%s%s/%04d", countsPrefix, day, shard)
}

// Increment adds one impression for (browserKey, versionKey) to a randomly
// chosen shard of the given day's bucket. The read-modify-write goes
// through the blob store's optimistic Update, so concurrent increments to
// the same shard retry instead of losing counts.
func (s *Store) Increment(ctx context.Context, day, browserKey, versionKey string) error {
	shard := rand.Intn(s.shardCount)
	key := shardKey(day, shard)

	err := s.blob.Update(ctx, key, func(old []byte) ([]byte, error) {
		histogram := make(model.Histogram)
		if len(old) > 0 {
			if err := json.Unmarshal(old, &histogram); err != nil || !histogram.Validate() {
				// A corrupt shard document is dropped rather than
				// poisoning every future increment to this shard.
				log.Warn().Str("key", key).Msg("Discarding corrupt counter shard")
				histogram = make(model.Histogram)
			}
		}
		histogram.Add(browserKey, versionKey, 1)
		return json.Marshal(histogram)
	})
	if err != nil {
		return fmt.Errorf("incrementing %s: %w", key, err)
	}
	return nil
}

// ReadRange fetches the unmerged per-shard histograms for each of the
// given days. Days with no data yield an entry with no histograms.
func (s *Store) ReadRange(ctx context.Context, days []string) ([]model.DayHistograms, error) {
	result := make([]model.DayHistograms, 0, len(days))

	for _, day := range days {
		keys, err := s.blob.List(ctx, countsPrefix+day+"/")
		if err != nil {
			return nil, fmt.Errorf("listing shards for %s: %w", day, err)
		}

		dayData := model.DayHistograms{Date: day, Histograms: make([]model.Histogram, 0, len(keys))}
		for _, key := range keys {
			value, err := s.blob.Get(ctx, key)
			if err == blob.ErrNotFound {
				// Pruned between list and get
				continue
			} else if err != nil {
				return nil, fmt.Errorf("reading shard %s: %w", key, err)
			}

			var histogram model.Histogram
			if err := json.Unmarshal(value, &histogram); err != nil || !histogram.Validate() {
				log.Warn().Str("key", key).Msg("Skipping corrupt counter shard")
				continue
			}
			dayData.Histograms = append(dayData.Histograms, histogram)
		}
		result = append(result, dayData)
	}

	return result, nil
}

// PruneExpired deletes every bucket whose date falls outside the trailing
// retention window, measured against the wall-clock UTC date at prune
// time. The full-namespace scan is acceptable because the stored key count
// is bounded by retentionDays * shardCount.
func (s *Store) PruneExpired(ctx context.Context, retentionDays int) error {
	expected := make(map[string]bool, retentionDays)
	for _, day := range RecentDays(retentionDays) {
		expected[day] = true
	}

	keys, err := s.blob.List(ctx, countsPrefix)
	if err != nil {
		return fmt.Errorf("listing counter keys: %w", err)
	}

	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) < 2 || expected[parts[1]] {
			continue
		}
		if err := s.blob.Delete(ctx, key); err != nil {
			return fmt.Errorf("pruning %s: %w", key, err)
		}
		log.Info().Str("key", key).Msg("Cleared expired counter bucket")
	}

	return nil
}

// DeleteAll removes every counter bucket. Administrative reset; failures
// surface to the caller.
func (s *Store) DeleteAll(ctx context.Context) error {
	keys, err := s.blob.List(ctx, countsPrefix)
	if err != nil {
		return fmt.Errorf("listing counter keys: %w", err)
	}
	for _, key := range keys {
		if err := s.blob.Delete(ctx, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	log.Info().Int("deleted", len(keys)).Msg("Deleted all counter data")
	return nil
}
