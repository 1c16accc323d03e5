// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Gridcast
// binaries.
//
// Configuration comes from a single file named by either the
// GRIDCAST_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). [Resolve] implements the order the binaries use:
// the flag, then the environment variable, then [Default]. There is no
// ~/.config discovery and no file search.
//
// The file may carry development and production sections that
// override base values when [Config].Environment matches.
//
// Path fields (scratch directory, IPC socket, lock file, presets file)
// expand ${HOME}, ${TMPDIR}, ${XDG_RUNTIME_DIR} and ${VAR:-default}
// after loading. No other environment variable overrides a value.
//
// This package depends on no other Gridcast packages.
package config
