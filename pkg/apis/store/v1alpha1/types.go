// Package v1alpha1 defines the wire types exchanged between the system of
// record and the orchestrator: store provisioning requests and the status
// payloads reported back per store.
package v1alpha1

// StoreRequest describes a single logical store to provision or delete.
// It is immutable once accepted: the orchestrator never mutates a request,
// it only derives cluster resources from it.
type StoreRequest struct {
	// StoreID is the opaque, caller-assigned identifier for the store.
	StoreID string `json:"store_id"`
	// Name is the human label; it doubles as the Helm release name and must
	// be a valid DNS label.
	Name string `json:"name"`
	// Engine selects the platform adapter (e.g. "woocommerce", "medusa").
	Engine Engine `json:"engine"`
	// Namespace is the isolation boundary for the store's release. It is
	// derived 1:1 from the store name and must be unique at any instant.
	Namespace string `json:"namespace"`
	// Host is the external hostname the store is served under.
	Host string `json:"host"`
	// BaseURL is the root URL of the deployment (scheme + host).
	BaseURL string `json:"base_url"`
	// StoreURL is the full storefront URL reported back on success.
	StoreURL string `json:"store_url"`
	// CreatorID identifies the user that requested the store, if known.
	CreatorID string `json:"creator_id,omitempty"`
}

// StatusPayload is the callback body posted to the system of record after
// each state transition.
type StatusPayload struct {
	Status ProvisioningState `json:"status"`
	// URL is the storefront URL, present once the store is READY.
	URL string `json:"url,omitempty"`
	// Error carries the human-readable failure reason for FAILED reports.
	Error string `json:"error,omitempty"`
	// Password is the platform admin credential, when it could be retrieved.
	Password string `json:"password,omitempty"`
}
