package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the application's custom rules registered.
func newValidator() *validator.Validate {
	validate := validator.New()

	// Register custom validation for LogLevel
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "debug", "info", "warn", "error", "fatal", "panic": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogFormat
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "console", "text", "json": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for report formats
	_ = validate.RegisterValidation("reportformat", func(fl validator.FieldLevel) bool {
		return slices.Contains(SupportedReportFormats, strings.ToLower(fl.Field().String()))
	})

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", errorwrapper.ErrInvalidConfiguration)
	}

	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", errorwrapper.ErrInvalidConfiguration, err)
	}

	var validationErrorMessages []string
	for _, e := range errs {
		// Drop the leading "GlobalConfig." so messages read like the config keys
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		validationErrorMessages = append(validationErrorMessages, msg)
	}
	return fmt.Errorf("%w: validation failed:\n  %s", errorwrapper.ErrInvalidConfiguration, strings.Join(validationErrorMessages, "\n  "))
}
