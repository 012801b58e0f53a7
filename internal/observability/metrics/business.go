package metrics

import "time"

// RecordFeedFetch records metrics for one completed fetch cycle.
func RecordFeedFetch(feedID string, duration time.Duration, itemsFound, itemsNew int) {
	FeedFetchDuration.WithLabelValues(feedID).Observe(duration.Seconds())
	if itemsFound > 0 {
		ItemsFetchedTotal.WithLabelValues(feedID).Add(float64(itemsFound))
	}
	if itemsNew > 0 {
		ItemsNewTotal.WithLabelValues(feedID).Add(float64(itemsNew))
	}
}

// RecordFeedFetchError records a fetch-cycle failure.
// Stage should name the pipeline stage that failed: "retrieve", "parse",
// "store", or "status".
func RecordFeedFetchError(feedID, stage string) {
	FeedFetchErrors.WithLabelValues(feedID, stage).Inc()
}

// RecordLockWait records the time spent acquiring an advisory lock.
// Scope is "registry" or "archive".
func RecordLockWait(scope string, duration time.Duration) {
	LockWaitDuration.WithLabelValues(scope).Observe(duration.Seconds())
}

// RecordLockTimeout records a lock acquisition that exceeded its bounded wait.
func RecordLockTimeout(scope string) {
	LockTimeouts.WithLabelValues(scope).Inc()
}

// UpdateFeedsTotal updates the registered-feeds gauge.
// This is refreshed after registry mutations.
func UpdateFeedsTotal(count int) {
	FeedsTotal.Set(float64(count))
}
