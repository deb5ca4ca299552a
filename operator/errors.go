package operator

import "fmt"

// ConfigurationError is returned by New when the supplied options cannot
// build a valid operator: an unrecognized option key, a missing or empty
// inputs list, or a malformed maxForks/outputs value.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("operator: configuration error: %s", e.Reason)
}

func configErr(reason string) *ConfigurationError {
	return &ConfigurationError{Reason: reason}
}
