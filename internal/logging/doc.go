// Package logging provides a minimal leveled logger for the viewer.
//
// The level is resolved once from the DEBUG and LOG_LEVEL environment
// variables and can be overridden programmatically with SetLevel. All
// functions are safe for concurrent use.
package logging
