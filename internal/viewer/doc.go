// Package viewer ties the core pipeline together: one Session owns the
// directory listing, the thumbnail cache, the viewport engine for the
// single open image, and the debounced histogram scheduler.
package viewer
