// Package cli wires together the Cobra command tree for the crev binary.
//
// The root command reviews a file or snippet once when given --file or
// --code and otherwise starts the interactive session. Subcommands cover
// chat, watch, config, models, cache and version. Handlers set a
// package-level exit code: 0 success, 1 issues at or above --fail-on,
// 2 usage, 3 credentials, 4 runtime failures.
package cli
