// Package startup loads environment-driven configuration and provides
// the build info and startup logging helpers used by main.
package startup
