// Package client provides embedded tool clients used by the orchestrator.
//
// This package contains Go library wrappers that are embedded directly into
// storeforge, eliminating external binary dependencies:
//
//   - helm: Helm release install, uninstall, and status via the Helm SDK
//   - netretry: Shared transient-failure detection and backoff schedules
//
// By embedding these clients as Go libraries, storeforge needs no helm or
// kubectl binaries on the host, simplifying deployment and ensuring version
// consistency.
package client
