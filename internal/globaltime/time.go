package globaltime

import (
	"sync"
	"time"
)

// ISOLayout matches the millisecond UTC timestamps browsers emit.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// Since is time.Since against the mockable clock.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}

// ISO formats t in UTC with millisecond precision, e.g.
// "2026-10-16T12:00:00.000Z".
func ISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = func() time.Time { return t }
}

func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = time.Now
}
