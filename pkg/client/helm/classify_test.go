package helm_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/storeforge/pkg/client/helm"
)

func TestClassify_Nil(t *testing.T) {
	t.Parallel()

	require.NoError(t, helm.Classify(nil))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantClass helm.FailureClass
	}{
		{
			name:      "chart not found is permanent",
			err:       errors.New("chart not found in repository https://charts.example.com"),
			wantClass: helm.Permanent,
		},
		{
			name:      "no chart version is permanent",
			err:       errors.New("no chart version found for wordpress-99.0.0"),
			wantClass: helm.Permanent,
		},
		{
			name:      "values validation is permanent",
			err:       errors.New("values validation failed: unknown field"),
			wantClass: helm.Permanent,
		},
		{
			name:      "name reuse is permanent",
			err:       errors.New("cannot re-use a name that is still in use"),
			wantClass: helm.Permanent,
		},
		{
			name:      "connection reset is transient",
			err:       errors.New("read tcp: connection reset by peer"),
			wantClass: helm.Transient,
		},
		{
			name:      "release lock is transient",
			err:       errors.New("another operation (install/upgrade/rollback) is in progress"),
			wantClass: helm.Transient,
		},
		{
			name:      "etcd timeout is transient",
			err:       errors.New("etcdserver: request timed out"),
			wantClass: helm.Transient,
		},
		{
			name:      "unknown errors default to permanent",
			err:       errors.New("something unexpected"),
			wantClass: helm.Permanent,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			classified := helm.Classify(testCase.err)

			var classifiedErr *helm.ClassifiedError

			require.ErrorAs(t, classified, &classifiedErr)
			assert.Equal(t, testCase.wantClass, classifiedErr.Class)
			assert.ErrorIs(t, classified, testCase.err)
		})
	}
}

func TestClassify_PermanentWinsOverTransient(t *testing.T) {
	t.Parallel()

	// A permanent pattern inside an otherwise retryable-looking message must
	// not be retried.
	err := errors.New("chart not found: 503 Service Unavailable")

	classified := helm.Classify(err)

	assert.False(t, helm.IsTransient(classified))
}

func TestClassify_PassThrough(t *testing.T) {
	t.Parallel()

	original := helm.Classify(errors.New("connection refused"))
	wrapped := fmt.Errorf("install: %w", original)

	reclassified := helm.Classify(wrapped)

	assert.Equal(t, wrapped, reclassified)
	assert.True(t, helm.IsTransient(reclassified))
}

func TestIsTransient_UnclassifiedError(t *testing.T) {
	t.Parallel()

	assert.False(t, helm.IsTransient(errors.New("connection refused")))
}
