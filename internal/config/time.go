package config

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultUsageSnapshotInterval = 15 * time.Minute

var (
	usageSnapshotInterval  atomic.Value
	usageIntervalListeners []chan time.Duration
	listenersMu            sync.Mutex
)

func init() {
	usageSnapshotInterval.Store(defaultUsageSnapshotInterval)
}

func SetBetweenTime() {
	cfg := GetConfig()
	setUsageSnapshotInterval(calculateUsageSnapshotInterval(cfg))
}

// CalculateBetweenTime converts a Timer into a duration with a floor of
// one second.
func CalculateBetweenTime(timer Timer) time.Duration {
	intervalMs := CalculateMillisecondsOfPeriod(timer)

	minInterval := uint64(1000)
	if intervalMs < minInterval {
		intervalMs = minInterval
	}

	return time.Duration(intervalMs) * time.Millisecond
}

func CalculateMillisecondsOfPeriod(timer Timer) uint64 {
	return uint64(timer.Days)*24*60*60*1000 +
		uint64(timer.Hours)*60*60*1000 +
		uint64(timer.Minutes)*60*1000 +
		uint64(timer.Seconds)*1000
}

func GetUsageSnapshotInterval() time.Duration {
	return usageSnapshotInterval.Load().(time.Duration)
}

// UsageSnapshotIntervalUpdates returns a channel that immediately yields
// the current interval and then every change to it.
func UsageSnapshotIntervalUpdates() <-chan time.Duration {
	ch := make(chan time.Duration, 1)
	listenersMu.Lock()
	usageIntervalListeners = append(usageIntervalListeners, ch)
	listenersMu.Unlock()

	ch <- GetUsageSnapshotInterval()
	return ch
}

func setUsageSnapshotInterval(interval time.Duration) {
	if interval <= 0 {
		interval = defaultUsageSnapshotInterval
	}

	current := GetUsageSnapshotInterval()
	if current == interval {
		return
	}

	usageSnapshotInterval.Store(interval)

	listenersMu.Lock()
	defer listenersMu.Unlock()
	for _, ch := range usageIntervalListeners {
		select {
		case ch <- interval:
		default:
		}
	}
}

func calculateUsageSnapshotInterval(cfg Config) time.Duration {
	timer := cfg.Runtime.UsageSnapshotTimer
	if timer.Days == 0 && timer.Hours == 0 && timer.Minutes == 0 && timer.Seconds == 0 {
		return defaultUsageSnapshotInterval
	}
	return CalculateBetweenTime(timer)
}
