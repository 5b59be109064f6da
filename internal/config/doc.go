// SPDX-License-Identifier: MPL-2.0

// Package config loads the layered forge configuration: user-level config
// dir, project-level forge.cue, and the project-local override under .forge/.
// Later layers win per key; nested maps merge recursively. Each layer is a
// CUE file validated against the embedded schema before it is merged into
// viper.
package config
