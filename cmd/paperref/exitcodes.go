package main

// Exit codes
const (
	ExitSuccess        = 0 // Success
	ExitError          = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError    = 2 // Configuration error (no repository, invalid config)
	ExitDataError      = 3 // Data error (malformed input, validation failure)
	ExitS2NotFound     = 4 // Paper not found in Semantic Scholar or the library
	ExitS2APIError     = 5 // Semantic Scholar API error (network, auth, bad response)
	ExitS2RateLimited  = 6 // Semantic Scholar rate limit exceeded
	ExitEmbeddingError = 7 // Ollama not running or embedding model missing
)
