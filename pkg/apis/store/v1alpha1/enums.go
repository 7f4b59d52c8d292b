package v1alpha1

// Engine identifies a supported e-commerce platform.
type Engine string

const (
	// EngineWooCommerce is the WordPress + WooCommerce platform.
	EngineWooCommerce Engine = "woocommerce"
	// EngineMedusa is the Medusa platform.
	EngineMedusa Engine = "medusa"
)

// ProvisioningState is the per-store lifecycle state machine.
//
// Transitions are monotonic: PROVISIONING -> {READY, FAILED}, and any state
// may move to DELETING. No transition re-enters PROVISIONING.
type ProvisioningState string

const (
	// StateProvisioning means the request is accepted but the release is not
	// yet confirmed ready.
	StateProvisioning ProvisioningState = "PROVISIONING"
	// StateReady means the release's workloads are live and post-deploy
	// configuration succeeded.
	StateReady ProvisioningState = "READY"
	// StateFailed means a provisioning step failed irrecoverably.
	StateFailed ProvisioningState = "FAILED"
	// StateDeleting means deletion was requested; once reported, the system
	// of record drops the store record.
	StateDeleting ProvisioningState = "DELETING"
)

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Deletion is always accepted, even mid-failure.
func (s ProvisioningState) CanTransitionTo(next ProvisioningState) bool {
	if next == StateDeleting {
		return true
	}

	if s == StateProvisioning {
		return next == StateReady || next == StateFailed
	}

	return false
}
