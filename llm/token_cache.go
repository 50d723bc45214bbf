package llm

import (
	"sync"
	"time"
)

// tokenCache is a single-slot bearer token cache: one vendor, one
// credential, one token at a time. Reads and refresh decisions happen under
// one mutex; the clock is injectable so expiry behavior is unit-testable.
type tokenCache struct {
	mu           sync.Mutex
	token        string
	expiresAt    time.Time
	safetyMargin time.Duration
	now          func() time.Time
}

func newTokenCache(safetyMargin time.Duration) *tokenCache {
	if safetyMargin <= 0 {
		safetyMargin = time.Minute
	}
	return &tokenCache{
		safetyMargin: safetyMargin,
		now:          time.Now,
	}
}

// get returns the cached token if it is still valid for at least the safety
// margin; otherwise it calls fetch and replaces the slot. A fetch failure
// leaves the previous slot untouched.
func (c *tokenCache) get(fetch func() (token string, expiresAt time.Time, err error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt.Add(-c.safetyMargin)) {
		return c.token, nil
	}

	token, expiresAt, err := fetch()
	if err != nil {
		return "", err
	}
	c.token = token
	c.expiresAt = expiresAt
	return token, nil
}

// invalidate clears the slot so the next call re-fetches.
func (c *tokenCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}
