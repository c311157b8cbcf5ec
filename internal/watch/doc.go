// Package watch reports images as they appear under an output directory.
//
// A generator usually writes an image in several steps (create, a burst of
// writes, sometimes a rename from a temp name). Events are coalesced per
// path and an image is reported once it has been quiet for the settle
// interval, so the reader sees a complete file.
package watch
