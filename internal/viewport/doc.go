// Package viewport implements the transform engine mapping the open
// image's pixel space onto the display surface: scale, quarter-turn
// rotation, and pan offset.
//
// The engine is not safe for concurrent use: it is owned by the UI
// context and every transition is a plain synchronous state mutation.
package viewport
