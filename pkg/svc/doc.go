// Package svc provides the service layer of the orchestrator.
//
// This package contains the business logic coordinating between the HTTP
// entry point and the underlying clients:
//
//   - provisioner: The store lifecycle pipeline (install, readiness,
//     configuration, deletion)
//   - reporter: Status callbacks to the system of record
package svc
