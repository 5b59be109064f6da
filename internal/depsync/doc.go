// SPDX-License-Identifier: MPL-2.0

// Package depsync keeps the shared install tree in step with a project's
// declared dependencies. It checks the shared manifest for each declared
// dependency, installs missing ones according to the configured install
// mode, and reports when the process must restart to pick up a changed
// dependency graph.
package depsync
