// Package reporter delivers per-store status callbacks to the system of
// record. Transient delivery failures (network errors, 5xx) are retried with
// exponential backoff; authentication rejections are fatal and never retried.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
	"github.com/storeforge/storeforge/pkg/client/netretry"
)

// TokenHeader is the shared-secret header used on inbound and outbound
// requests alike.
const TokenHeader = "X-Orchestrator-Token"

const (
	defaultMaxAttempts = 5
	retryBaseWait      = 2 * time.Second
	retryMaxWait       = 30 * time.Second
)

// ErrCallbackRejected is returned on a 4xx callback response. A rejected
// token is a configuration error: retrying would only hammer the backend
// with the same bad credential.
var ErrCallbackRejected = errors.New("status callback rejected")

// Interface reports a store's state transition to the system of record.
type Interface interface {
	Report(ctx context.Context, storeID string, payload v1alpha1.StatusPayload) error
}

// Reporter is the HTTP implementation of Interface.
type Reporter struct {
	httpClient  *http.Client
	apiBase     string
	token       string
	maxAttempts int
	baseWait    time.Duration
	maxWait     time.Duration
	logger      logrus.FieldLogger
}

var _ Interface = (*Reporter)(nil)

// New creates a status reporter posting to apiBase with the shared token.
func New(apiBase, token string, timeout time.Duration, logger logrus.FieldLogger) *Reporter {
	return &Reporter{
		httpClient:  &http.Client{Timeout: timeout},
		apiBase:     apiBase,
		token:       token,
		maxAttempts: defaultMaxAttempts,
		baseWait:    retryBaseWait,
		maxWait:     retryMaxWait,
		logger:      logger,
	}
}

// Report posts the payload to the store's status callback path. Retries are
// bounded; the last error is returned when the budget runs out.
func (r *Reporter) Report(
	ctx context.Context,
	storeID string,
	payload v1alpha1.StatusPayload,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal status payload: %w", err)
	}

	url := fmt.Sprintf("%s/stores/%s/status", r.apiBase, storeID)

	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = r.post(ctx, url, body)
		if lastErr == nil {
			return nil
		}

		if errors.Is(lastErr, ErrCallbackRejected) {
			// Fatal for the operator to fix; do not retry.
			return lastErr
		}

		if attempt == r.maxAttempts {
			break
		}

		delay := netretry.ExponentialDelay(attempt, r.baseWait, r.maxWait)

		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{
				"store_id": storeID,
				"attempt":  attempt,
				"delay":    delay.String(),
			}).Warnf("status callback failed, retrying: %v", lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}

			return fmt.Errorf("status callback cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("status callback for store %q: %w", storeID, lastErr)
}

func (r *Reporter) post(ctx context.Context, url string, body []byte) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(TokenHeader, r.token)

	response, err := r.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("post status callback: %w", err)
	}

	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(response.Body, 4096))

	if response.StatusCode >= http.StatusBadRequest &&
		response.StatusCode < http.StatusInternalServerError {
		return fmt.Errorf("%w: %d %s", ErrCallbackRejected, response.StatusCode, string(respBody))
	}

	return fmt.Errorf("status callback returned %d: %s", response.StatusCode, string(respBody))
}
