package feed

import "time"

// BackoffTable is the reconnect delay indexed by consecutive failures.
var BackoffTable = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
}

// Backoff returns the delay before the next attempt after the given number of
// consecutive failures. Counts past the table reuse its last entry.
func Backoff(failures int) time.Duration {
	if failures < 0 {
		failures = 0
	}
	if failures >= len(BackoffTable) {
		return BackoffTable[len(BackoffTable)-1]
	}
	return BackoffTable[failures]
}
