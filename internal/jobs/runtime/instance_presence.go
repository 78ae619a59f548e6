package runtime

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	instanceKeyPrefix = "ipamd:instance:"
	presenceInterval  = 15 * time.Second
	presenceTTL       = 30 * time.Second
)

// PresenceStore is the slice of the redis API the presence tracking
// needs. *redis.Client satisfies it; tests supply an in-memory fake.
type PresenceStore interface {
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
}

var instanceID = newInstanceID()

func newInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d-%d", hostname, os.Getpid(), time.Now().UnixNano())
}

// AnnouncePresence refreshes this instance's presence key under a TTL
// until ctx is cancelled. The value is the instance's start time, so an
// operator inspecting redis can tell the instances apart. A crashed
// instance simply stops refreshing and its key expires.
func AnnouncePresence(ctx context.Context, store PresenceStore, interval, ttl time.Duration) {
	key := instanceKeyPrefix + instanceID
	startedAt := time.Now().UTC().Format(time.RFC3339)

	refresh := func() {
		if err := store.SetEx(ctx, key, startedAt, ttl).Err(); err != nil {
			log.Error("Failed to refresh instance presence", "key", key, "error", err)
		}
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// LaunchPresence starts AnnouncePresence with the default cadence in its
// own goroutine and returns the cancel that stops it.
func LaunchPresence(parent context.Context, store PresenceStore) context.CancelFunc {
	ctx, cancel := context.WithCancel(parent)
	go AnnouncePresence(ctx, store, presenceInterval, presenceTTL)
	return cancel
}

// CountActiveInstances reports how many service instances currently hold
// an unexpired presence key. The dashboard surfaces this number.
func CountActiveInstances(ctx context.Context, store PresenceStore) (int, error) {
	keys, err := store.Keys(ctx, instanceKeyPrefix+"*").Result()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
