// SPDX-License-Identifier: MPL-2.0

// Package forgefile loads Lua command modules and discovers the commands
// they export.
//
// A command module is a Lua file. Bindings are exported two ways: globals
// assigned by the chunk (named exports) and the chunk's returned table
// (default export). Any binding shaped like a command — a table with a
// string 'description' and either an 'execute' function or a 'run' shell
// script — is discovered as one, without explicit registration.
package forgefile
