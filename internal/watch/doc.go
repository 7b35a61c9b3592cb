// Package watch re-runs a callback whenever a single file is saved, with
// bursts of filesystem events collapsed by a debounce interval.
package watch
