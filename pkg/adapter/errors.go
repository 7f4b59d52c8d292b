package adapter

import "errors"

// ErrUnsupportedEngine is returned when an engine identifier is not
// registered at all.
var ErrUnsupportedEngine = errors.New("unsupported store engine")

// ErrNotImplemented is returned by adapters that are registered but stubbed.
// Distinct from ErrUnsupportedEngine: the engine is known, just not built yet.
var ErrNotImplemented = errors.New("store engine not implemented")

// ErrCredentialUnavailable is returned when the platform admin credential
// cannot be retrieved yet. Non-fatal: provisioning reports it as pending.
var ErrCredentialUnavailable = errors.New("admin credential not available yet")
