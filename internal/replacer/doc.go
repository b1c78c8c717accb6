// Package replacer finds alternative sources for existing library
// entries: it searches for a candidate URL, skips ones the history has
// already attempted, downloads over the current video, and records the
// attempt in the sidecar.
package replacer
