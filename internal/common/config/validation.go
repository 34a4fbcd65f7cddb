package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

func LogValidationErrors(err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, err := range validationErrors {
			log.Error(describe(err))
		}
	}
}

// AsConfigErrors converts the failures in a validation error into one ErrConfig each. Other errors
// are returned unchanged.
func AsConfigErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	var result *multierror.Error
	for _, e := range validationErrors {
		result = multierror.Append(result, errors.WithStack(&pbserrors.ErrConfig{
			Name:    "configuration",
			Message: describe(e),
		}))
	}
	return result.ErrorOrNil()
}

func describe(err validator.FieldError) string {
	fieldName := stripPrefix(err.Namespace())
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("ConfigError: Field %s is required but was not found", fieldName)
	default:
		return fmt.Sprintf("ConfigError: Field %s has invalid value %v: %s", fieldName, err.Value(), err.Tag())
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
