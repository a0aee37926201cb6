package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the custom rules used by config tags.
func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	// urlscan scan visibility levels
	_ = validate.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "public", "unlisted", "private":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration is nil", common.ErrInvalidConfiguration)
	}

	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfiguration, err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.Namespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("%w:\n  %s", common.ErrInvalidConfiguration, strings.Join(messages, "\n  "))
}
