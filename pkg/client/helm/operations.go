package helm

import (
	"context"
	"fmt"
	"time"

	"github.com/storeforge/storeforge/pkg/client/netretry"
)

const (
	// InstallMaxAttempts bounds the retry budget for transient install
	// failures (release lock conflicts, flaky chart registries).
	InstallMaxAttempts = 3

	installRetryBaseWait = 3 * time.Second
	installRetryMaxWait  = 30 * time.Second
)

// InstallWithRetry attempts a chart install, retrying transient-class
// failures with exponential backoff. Permanent failures return immediately.
func InstallWithRetry(
	ctx context.Context,
	client Interface,
	spec *ChartSpec,
) (*ReleaseInfo, error) {
	var (
		info    *ReleaseInfo
		lastErr error
	)

	for attempt := 1; attempt <= InstallMaxAttempts; attempt++ {
		info, lastErr = client.Install(ctx, spec)
		if lastErr == nil {
			return info, nil
		}

		if !IsTransient(lastErr) || attempt == InstallMaxAttempts {
			break
		}

		delay := netretry.ExponentialDelay(attempt, installRetryBaseWait, installRetryMaxWait)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}

			return nil, fmt.Errorf("install retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to install release %q: %w", spec.ReleaseName, lastErr)
}
