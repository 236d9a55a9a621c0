package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, no repository)
	ExitDataError   = 3 // Data error (unreadable input, unknown article, invalid transition)
	ExitValidation  = 4 // Submission or decision failed validation
)
