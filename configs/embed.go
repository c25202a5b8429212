// Package configs provides embedded configuration templates for fastfind.
//
// Templates are embedded at build time so `fastfind config init` works from
// any distribution of the binary.
//
// Template files:
//   - project-config.example.yaml: written to .fastfind.yaml in a project root
//   - user-config.example.yaml: written to ~/.config/fastfind/config.yaml
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (config.NewConfig)
//  2. User config
//  3. Project config
//  4. Environment variables (FASTFIND_*)
//  5. Command line flags
package configs

import _ "embed"

// UserConfigTemplate is the template for machine-wide configuration.
// Created by: `fastfind config init --user`
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for per-project configuration.
// Created by: `fastfind config init` in the project root.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
