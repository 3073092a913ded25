package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errorwrapper.NewValidationError("config", nil, "config is nil")
	}

	validate := validator.New()
	registerCustomValidations(validate)

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	var messages []string
	for _, e := range errs {
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", trimNamespace(e.StructNamespace()), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("%w:\n  %s", errorwrapper.ErrInvalidConfiguration, strings.Join(messages, "\n  "))
}

func registerCustomValidations(validate *validator.Validate) {
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
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

	_ = validate.RegisterValidation("proberengine", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case EngineExec, EngineLibrary:
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("extractorengine", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case EngineExec, EngineJSluice:
			return true
		default:
			return false
		}
	})

	// At least one argument must carry the {url} placeholder.
	_ = validate.RegisterValidation("urlplaceholder", func(fl validator.FieldLevel) bool {
		args, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		for _, arg := range args {
			if strings.Contains(arg, URLPlaceholder) {
				return true
			}
		}
		return false
	})

	// Output file names live inside the output directory.
	_ = validate.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "" && name == filepath.Base(name) && name != "." && name != ".."
	})
}

// trimNamespace drops the root struct name from a validator namespace
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
