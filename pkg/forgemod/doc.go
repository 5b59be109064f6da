// SPDX-License-Identifier: MPL-2.0

// Package forgemod locates command modules on disk. It classifies module
// specifiers, resolves them against the project-local, shared, and project
// dependency tiers, and maintains the per-project alias links that let
// project-local modules share the host's loaded framework bindings.
package forgemod
