package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCacheReusesUntilSafetyMargin(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	cache := newTokenCache(time.Minute)
	cache.now = func() time.Time { return clock }

	fetches := 0
	fetch := func() (string, time.Time, error) {
		fetches++
		return "tok-1", base.Add(30 * time.Minute), nil
	}

	token, err := cache.get(fetch)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, fetches)

	// Still comfortably within expiry minus margin: no refetch.
	clock = base.Add(28 * time.Minute)
	token, err = cache.get(fetch)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, fetches)

	// Inside the safety margin: the slot is refreshed.
	clock = base.Add(29*time.Minute + 30*time.Second)
	_, err = cache.get(fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestTokenCacheInvalidateForcesRefetch(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newTokenCache(time.Minute)
	cache.now = func() time.Time { return base }

	fetches := 0
	fetch := func() (string, time.Time, error) {
		fetches++
		return "tok", base.Add(time.Hour), nil
	}

	_, err := cache.get(fetch)
	require.NoError(t, err)
	cache.invalidate()
	_, err = cache.get(fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestTokenCacheFetchFailureLeavesSlotEmpty(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newTokenCache(time.Minute)
	cache.now = func() time.Time { return base }

	boom := errors.New("oauth down")
	_, err := cache.get(func() (string, time.Time, error) {
		return "", time.Time{}, boom
	})
	require.ErrorIs(t, err, boom)

	// The next call tries again instead of serving a stale slot.
	token, err := cache.get(func() (string, time.Time, error) {
		return "tok", base.Add(time.Hour), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestTokenCacheDefaultsSafetyMargin(t *testing.T) {
	cache := newTokenCache(0)
	assert.Equal(t, time.Minute, cache.safetyMargin)
}
