// Package file provides the TOML-backed configuration store.
// Configuration is loaded once at startup and injected into the
// adapters that need it; nothing reads it through a global.
package file
