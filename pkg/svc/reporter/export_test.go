package reporter

import "time"

// SetRetryWaits overrides the backoff schedule so retry tests run fast.
func (r *Reporter) SetRetryWaits(base, maxWait time.Duration) {
	r.baseWait = base
	r.maxWait = maxWait
}
