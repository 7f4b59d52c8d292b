// Package netretry provides shared retry utilities for transient failures
// across the Helm driver and the status reporter.
package netretry

import (
	"regexp"
	"strings"
	"time"
)

// httpStatusCodePattern matches HTTP 5xx status codes at word boundaries
// to avoid false positives on port numbers like ":5000".
var httpStatusCodePattern = regexp.MustCompile(`\b50[0-4]\b`)

// IsRetryable returns true if the error indicates a transient condition that
// should be retried. This covers HTTP 5xx status codes, TCP-level errors such
// as connection resets and timeouts, and Helm's per-release lock conflicts.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()

	// HTTP 5xx status text, TCP-level transient errors, and the lock/timeout
	// conditions Helm reports while another operation holds a release.
	textPatterns := []string{
		"Internal Server Error", "Bad Gateway",
		"Service Unavailable", "Gateway Timeout",
		"connection reset by peer", "connection refused",
		"i/o timeout", "TLS handshake timeout",
		"unexpected EOF", "no such host",
		"another operation (install/upgrade/rollback) is in progress",
		"etcdserver: request timed out",
		"timed out waiting for the condition",
	}

	for _, pattern := range textPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return httpStatusCodePattern.MatchString(errMsg)
}

// ExponentialDelay returns the delay for the given retry attempt
// using exponential backoff.
// Uses the formula: min(baseWait * 2^(attempt-1), maxWait).
func ExponentialDelay(
	attempt int,
	baseWait, maxWait time.Duration,
) time.Duration {
	return min(baseWait*time.Duration(1<<(attempt-1)), maxWait)
}
