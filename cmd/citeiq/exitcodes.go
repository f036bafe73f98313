package main

// Exit codes returned by citeiq commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config values, unusable paths)
	ExitDataError   = 3 // Data error (missing input, no records database)
	ExitCacheBusy   = 4 // Metadata cache locked by another citeiq process
)
