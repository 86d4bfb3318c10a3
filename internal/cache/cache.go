// Package cache stores rendered responses keyed by user. Failures degrade to
// a miss; callers never see cache errors.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	DeletePrefix(ctx context.Context, prefix string)
}

// UserPrefix is the key prefix under which every entry for userID lives.
func UserPrefix(userID uuid.UUID) string {
	return "user:" + userID.String() + ":"
}

// Key joins parts under the user's prefix.
func Key(userID uuid.UUID, parts ...string) string {
	return UserPrefix(userID) + strings.Join(parts, ":")
}

// Cleaner is implemented by caches that expire entries lazily.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically evicts expired entries from registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop waits for the cleanup goroutine to exit. StartCleanup must have been
// called.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
