package v1alpha1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
)

func TestProvisioningState_CanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from v1alpha1.ProvisioningState
		to   v1alpha1.ProvisioningState
		want bool
	}{
		{"provisioning to ready", v1alpha1.StateProvisioning, v1alpha1.StateReady, true},
		{"provisioning to failed", v1alpha1.StateProvisioning, v1alpha1.StateFailed, true},
		{"provisioning to deleting", v1alpha1.StateProvisioning, v1alpha1.StateDeleting, true},
		{"ready to deleting", v1alpha1.StateReady, v1alpha1.StateDeleting, true},
		{"failed to deleting", v1alpha1.StateFailed, v1alpha1.StateDeleting, true},
		{"deleting to deleting", v1alpha1.StateDeleting, v1alpha1.StateDeleting, true},
		{"ready to provisioning", v1alpha1.StateReady, v1alpha1.StateProvisioning, false},
		{"failed to ready", v1alpha1.StateFailed, v1alpha1.StateReady, false},
		{"ready to failed", v1alpha1.StateReady, v1alpha1.StateFailed, false},
		{"deleting to ready", v1alpha1.StateDeleting, v1alpha1.StateReady, false},
		{"provisioning to provisioning", v1alpha1.StateProvisioning, v1alpha1.StateProvisioning, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := testCase.from.CanTransitionTo(testCase.to)

			assert.Equal(t, testCase.want, got)
		})
	}
}
