package repository

import "time"

// DefaultStaleThreshold is how old the cache may get before a refresh.
const DefaultStaleThreshold = 24 * time.Hour

// StalenessPolicy decides whether a content family must be fetched again.
type StalenessPolicy struct {
	Threshold time.Duration
	Now       func() time.Time
}

// NewStalenessPolicy returns a policy using the wall clock. A non-positive
// threshold falls back to DefaultStaleThreshold.
func NewStalenessPolicy(threshold time.Duration) StalenessPolicy {
	if threshold <= 0 {
		threshold = DefaultStaleThreshold
	}
	return StalenessPolicy{Threshold: threshold, Now: time.Now}
}

// NeedsSync is true when the family was never synced, the last sync is older
// than the threshold, or the cache holds no rows.
func (p StalenessPolicy) NeedsSync(lastSyncedAt *time.Time, localCount int64) bool {
	if lastSyncedAt == nil || localCount == 0 {
		return true
	}
	return p.Now().Sub(*lastSyncedAt) > p.Threshold
}
