// Package config loads and validates the archiver configuration.
//
// Configuration lives in a TOML file, searched at ~/.config/vrcache/config.toml
// and then ./vrcache.toml when no explicit path is given. Load applies
// defaults, expands ~ in every path field, and validates the result, so the
// rest of the codebase only ever sees absolute, sane values.
package config
