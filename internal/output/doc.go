// Package output formats review sessions for display or machine consumption.
//
// Three formats are supported:
//   - text: a short header followed by the model reply (default)
//   - markdown: the parsed review as a PR-comment-friendly report
//   - json: the full [Transcript]
//
// Use [GetWriter] to obtain a [Writer] for a given format string.
// [SaveTranscript] persists a session for the --output flag and the REPL
// save command.
package output
