package v1alpha1

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrStoreIDRequired is returned when a request carries no store ID.
	ErrStoreIDRequired = errors.New("store id is required")
	// ErrNameInvalid is returned when the store name is not a DNS label.
	ErrNameInvalid = errors.New("store name must be a lowercase DNS label")
	// ErrNamespaceInvalid is returned when the namespace is not a DNS label.
	ErrNamespaceInvalid = errors.New("namespace must be a lowercase DNS label")
	// ErrEngineRequired is returned when no engine is specified.
	ErrEngineRequired = errors.New("engine is required")
	// ErrHostRequired is returned when no external host is specified.
	ErrHostRequired = errors.New("host is required")
)

// dnsLabelPattern matches RFC 1123 DNS labels (max 63 chars, lowercase
// alphanumerics and dashes, no leading/trailing dash).
var dnsLabelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Validate checks that the request can be acted upon. The namespace and
// release name are fed directly into cluster resources, so both must be
// DNS-label safe before anything else runs.
func (r *StoreRequest) Validate() error {
	if r.StoreID == "" {
		return ErrStoreIDRequired
	}

	if !dnsLabelPattern.MatchString(r.Name) {
		return fmt.Errorf("%w: %q", ErrNameInvalid, r.Name)
	}

	if !dnsLabelPattern.MatchString(r.Namespace) {
		return fmt.Errorf("%w: %q", ErrNamespaceInvalid, r.Namespace)
	}

	if r.Engine == "" {
		return ErrEngineRequired
	}

	if r.Host == "" {
		return ErrHostRequired
	}

	return nil
}
