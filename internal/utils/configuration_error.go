package utils

import "fmt"

const configurationErrorTemplateConstant = "configuration error: %s"

// ConfigurationError marks invalid or missing run configuration. It is
// detected before any registry or git activity and maps to exit status 2.
type ConfigurationError struct {
	Message string
	Cause   error
}

// NewConfigurationError builds a ConfigurationError with a formatted message.
func NewConfigurationError(format string, arguments ...any) ConfigurationError {
	return ConfigurationError{Message: fmt.Sprintf(format, arguments...)}
}

// Error renders the message and its cause.
func (configurationError ConfigurationError) Error() string {
	if configurationError.Cause == nil {
		return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Message)
	}
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Message+": "+configurationError.Cause.Error())
}

// Unwrap exposes the cause.
func (configurationError ConfigurationError) Unwrap() error {
	return configurationError.Cause
}
