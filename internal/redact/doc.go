// Package redact scrubs secrets from code before it is sent to the remote
// model.
//
// Detection is regex-based and covers API keys, JWTs, private key headers,
// AWS keys, bearer tokens, database URLs with inline passwords and
// provider-specific tokens (GitHub, OpenAI, Anthropic, Slack). Files whose
// path matches a configured glob are withheld entirely.
package redact
