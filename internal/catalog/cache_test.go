package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "INFO_370", CacheKey("info", "370"))
}

func TestCache_ExpiresLazily(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(time.Hour, clock.Now)

	c.Set("INFO_370", Record{Found: true, Title: "Database Systems"})
	rec, ok := c.Get("INFO_370")
	require.True(t, ok)
	assert.Equal(t, "Database Systems", rec.Title)

	clock.Advance(59 * time.Minute)
	_, ok = c.Get("INFO_370")
	assert.True(t, ok, "entry should still be live before the TTL")

	clock.Advance(2 * time.Minute)
	// Expired entries are still counted until a lookup touches them.
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get("INFO_370")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_ExpiresAtExactTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewCache(time.Minute, clock.Now)
	c.Set("A_1", Record{})
	clock.Advance(time.Minute)
	_, ok := c.Get("A_1")
	assert.False(t, ok)
}

func TestCache_ClearAndKeys(t *testing.T) {
	c := NewCache(0, nil)
	c.Set("MATH_151", Record{})
	c.Set("INFO_370", Record{})

	assert.Equal(t, []string{"INFO_370", "MATH_151"}, c.Keys())
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
}

func TestLatencyStats_Snapshot(t *testing.T) {
	s := NewLatencyStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		s.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := s.Snapshot()
	assert.Equal(t, 5, snap.Count)
	assert.Equal(t, int64(100), snap.MinMs)
	assert.Equal(t, int64(500), snap.MaxMs)
	assert.Equal(t, 300.0, snap.AvgMs)
	assert.Equal(t, 300.0, snap.P50Ms)
	assert.Equal(t, 480.0, snap.P95Ms)
}

func TestLatencyStats_PrunesOldSamples(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	s := NewLatencyStats(time.Minute)
	s.now = clock.Now

	s.Record(100 * time.Millisecond)
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, s.Snapshot().Count)

	s.Record(200 * time.Millisecond)
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, int64(200), snap.MinMs)
}

func TestLatencyStats_ClampsNegative(t *testing.T) {
	s := NewLatencyStats(time.Hour)
	s.Record(-time.Second)
	assert.Equal(t, int64(0), s.Snapshot().MaxMs)
}
