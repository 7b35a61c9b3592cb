// Crev is a CLI for reviewing code with an OpenAI-compatible chat model.
//
// It reviews files and inline snippets once, or runs an interactive session
// that keeps the conversation so follow-up questions refer to earlier code.
// Replies follow a fixed structure (summary, issues, suggestions, refactored
// snippet, test stubs) and single-shot reviews exit non-zero when an issue
// meets the --fail-on severity.
//
// Usage:
//
//	crev                              # interactive session
//	crev --file main.py               # review a file and exit
//	crev --code "x = 1" --lang Python # review an inline snippet
//	cat main.go | crev --code -       # review code from stdin
//	crev --file main.py -o review.json
//	crev watch main.py                # re-review on every save
//	crev models doctor                # check credentials
package main
