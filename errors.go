package routeprobe

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// UnsupportedTypeError is raised when TypeRegistry has no generator
// (built-in, registered, or synthesizable) for a TypeRef it was asked
// to resolve.
type UnsupportedTypeError struct {
	Detail string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("routeprobe: unsupported type: %s", e.Detail)
}

// AlreadyRegisteredError is raised by Register/RegisterMany when a type
// already has a generator registered and the caller did not pass
// override=true.
type AlreadyRegisteredError struct {
	Type string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("routeprobe: generator already registered for %s", e.Type)
}

// MissingCredentialError is raised by an AuthDecorator whose TokenSource
// could not produce a credential for a route that requires one.
type MissingCredentialError struct {
	Route  string
	Reason string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("routeprobe: missing credential for %s: %s", e.Route, e.Reason)
}

// TransportErrorKind classifies why a Transport call failed, separating
// infrastructure failure from a route that genuinely returned garbage.
// TrialRunner logs it; it is not recorded in a FailureReport.
type TransportErrorKind string

const (
	TransportDial    TransportErrorKind = "dial"
	TransportTimeout TransportErrorKind = "timeout"
	TransportTLS     TransportErrorKind = "tls"
	TransportDecode  TransportErrorKind = "decode"
)

// TransportError wraps a Transport-level failure with its kind and the
// underlying cause.
type TransportError struct {
	Kind  TransportErrorKind
	Route string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("routeprobe: transport %s error for %s: %v", e.Kind, e.Route, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidatorErrorKind classifies what a Validator checked and rejected.
type ValidatorErrorKind string

const (
	ValidatorStatus      ValidatorErrorKind = "status"
	ValidatorContentType ValidatorErrorKind = "content_type"
	ValidatorSchema      ValidatorErrorKind = "schema"
)

// ValidatorError reports a single validation verdict's rejection
// reason, aggregated by TrialRunner into a FailureReport.
type ValidatorError struct {
	Kind   ValidatorErrorKind
	Detail string
}

func (e *ValidatorError) Error() string {
	return fmt.Sprintf("routeprobe: %s validation failed: %s", e.Kind, e.Detail)
}

// FilterAllEmptyError is raised when a Filter's include/exclude
// combination leaves zero routes selected — always a configuration
// error, never a valid empty run.
type FilterAllEmptyError struct {
	Include []string
	Exclude []string
}

func (e *FilterAllEmptyError) Error() string {
	return fmt.Sprintf("routeprobe: filter include=%v exclude=%v selects no routes", e.Include, e.Exclude)
}

// formatValidationError converts a go-playground/validator FieldError
// into a human-readable message, used to render Settings validation
// failures at startup.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// FormatSettingsError renders a validator.ValidationErrors (or any
// other error) from ValidateSettings into one multi-line message.
func FormatSettingsError(err error) string {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		msg := ""
		for i, ve := range valErrs {
			if i > 0 {
				msg += "; "
			}
			msg += fmt.Sprintf("%s: %s", ve.Field(), formatValidationError(ve))
		}
		return msg
	}
	return err.Error()
}
