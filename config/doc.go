// Package config resolves the seller scoring application's settings from an
// optional structured file and the process environment. For every key the
// file wins over the environment and the environment wins over the setting's
// default. Typed accessors coerce the resolved value and report malformed
// overrides instead of silently falling back to the default.
package config
