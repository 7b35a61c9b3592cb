// Package providers talks to the remote chat-completion endpoint.
//
// Every supported backend (GitHub Models, OpenAI, Ollama, LM Studio) speaks
// the OpenAI chat-completions protocol, so a single [OpenAICompat] client
// built on go-openai serves all of them. Each call is exactly one HTTP
// exchange; there is no retry or back-off. Credential failures surface as
// errors for which [IsAuthError] reports true.
//
// Use [New] to obtain a client by provider name and model string.
package providers
