// Package session keeps the in-memory conversation replayed to the remote
// model: the system prompt, the ordered user/assistant turns, and the last
// reviewed snippet that "explain" refers back to.
package session
