// Package cache provides a file-based cache for model replies.
//
// Entries are keyed by a SHA-256 fingerprint of the provider, model,
// sampling parameters and the full message list sent to the endpoint, so a
// cached reply is only reused for a byte-identical conversation. Each entry
// stores the reply with a creation timestamp and TTL (in seconds); expired
// entries are skipped on read.
//
// The default cache directory is $XDG_CACHE_HOME/crev (or the OS-appropriate
// equivalent). Code reaching the cache has already been through secret
// redaction.
package cache
