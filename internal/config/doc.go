// Package config loads and validates the TOML configuration shared by the
// docflow daemon and CLI.
//
// Configuration is resolved from an explicit path, then
// ~/.config/docflow/config.toml, then a docflow.toml in the working
// directory. Missing files fall back to defaults; loaded values are
// normalized (path expansion, keyword lowercasing) before validation.
package config
