package main

// Exit codes
const (
	ExitSuccess             = 0 // Success
	ExitError               = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError         = 2 // Configuration error (invalid config, missing table or dataset)
	ExitNoText              = 3 // No text could be extracted from the manuscript
	ExitProviderUnavailable = 4 // Embedding provider not reachable
	ExitModelNotFound       = 5 // Embedding model not found
	ExitTableStale          = 6 // Table was built with a different model or dimensions
)
