// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing error types for the forge
// CLI. ActionableError carries the operation that failed, the resource
// involved, and suggestions for recovery; the ErrorContext builder assembles
// them fluently at error sites.
package issue
