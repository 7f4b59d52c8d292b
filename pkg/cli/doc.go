// Package cli provides the storeforge command surface.
//
// This package is organized into subpackages:
//
//   - cli/cmd: Command tree definitions (root, serve)
//
// Commands resolve their dependencies through the runtime container in
// pkg/di, keeping handlers testable without a cluster.
package cli
