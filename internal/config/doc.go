// Package config loads and merges crev configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CREV_PROVIDER, COPILOT_MODEL, OPENAI_MODEL,
//     CREV_FORMAT, CREV_FAIL_ON, ...), including those loaded from .env
//  3. Config file ($XDG_CONFIG_HOME/crev/config.toml)
//  4. Built-in defaults
//
// The TOML file is decoded directly over the defaults, so keys it leaves out
// keep their default values. Use [Load] to obtain a merged [Config], [Save]
// to write one, and [SetField] to update a single key.
package config
