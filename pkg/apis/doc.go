// Package apis provides API type definitions for storeforge resources.
//
// This package contains versioned wire types following Kubernetes API
// conventions:
//
//   - store: Store provisioning requests and status payloads exchanged with
//     the system of record
//
// The API types are designed to be serializable to JSON and are treated as
// immutable once accepted.
package apis
