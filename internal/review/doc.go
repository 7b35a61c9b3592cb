// Package review holds the code-review agent and the types describing its
// replies.
//
// An Agent owns a session.History seeded with the CodeReview system prompt
// and replays the whole conversation to a providers.Chatter on every turn.
// ReviewCode and ReviewFile record the snippet as the last reviewed code so
// that ExplainLast can ask a follow-up about it; Clear starts over. Code is
// passed through the redact package before it leaves the process.
//
// Parse splits a reply into the Summary, Issues Found, Suggestions,
// Refactored Snippet and Test Stubs sections requested by the system prompt.
// Parsing is best effort: the raw reply is always kept and is what the
// interactive loop prints.
package review
