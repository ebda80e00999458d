package main

// Exit codes
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError     = 2 // Configuration error (missing account, bad credentials source)
	ExitValidationError = 3 // Metadata document failed validation
	ExitConflict        = 4 // DOI already exists in the registry
	ExitRegistryError   = 5 // DataCite refused the request
)
