// Package config owns the bridge runtime configuration value.
//
// The value is built once by the entry point from defaults, an optional
// TOML overlay file and the process environment, then passed explicitly to
// every component. Nothing below cmd/ reads the environment.
package config
