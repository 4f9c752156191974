package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/fleetvoice/internal/common"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/go-playground/validator/v10"
)

// newValidator builds a validator with the application's custom rules.
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

	_ = validate.RegisterValidation("concurrency", func(fl validator.FieldLevel) bool {
		switch models.ConcurrencyMode(strings.ToLower(fl.Field().String())) {
		case "", models.ConcurrencyShared, models.ConcurrencyParallel:
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("sourcekind", func(fl validator.FieldLevel) bool {
		switch models.SourceKind(strings.ToLower(fl.Field().String())) {
		case "", models.SourceKindDashboard, models.SourceKindAPI:
			return true
		default:
			return false
		}
	})

	return validate
}

// ValidateConfig performs tag validation on the GlobalConfig structure followed
// by the cross-section rules tags cannot express.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return common.NewValidationError("config", nil, "config is nil")
	}

	if err := newValidator().Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			messages := make([]string, 0, len(errs))
			for _, e := range errs {
				msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", trimNamespace(e.Namespace()), e.Tag())
				if e.Param() != "" {
					msg += fmt.Sprintf(" (expected: %s)", e.Param())
				}
				if e.Value() != nil && e.Value() != "" {
					msg += fmt.Sprintf(", actual: '%v'", e.Value())
				}
				messages = append(messages, msg)
			}
			return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	return validateSemantics(cfg)
}

func trimNamespace(ns string) string {
	return strings.TrimPrefix(ns, "GlobalConfig.")
}

func validateSemantics(cfg *GlobalConfig) error {
	entityIDs := make(map[string]struct{}, len(cfg.Entities))
	for _, e := range cfg.Entities {
		if _, dup := entityIDs[e.ID]; dup {
			return common.NewConfigurationError("entities", "id", fmt.Sprintf("duplicate entity id '%s'", e.ID))
		}
		entityIDs[e.ID] = struct{}{}
	}

	if def := cfg.Voice.DefaultEntity; def != "" {
		if _, ok := entityIDs[def]; !ok {
			return common.NewConfigurationError("voice", "default_entity", fmt.Sprintf("unknown entity '%s'", def))
		}
	}

	sourceNames := make(map[string]struct{}, len(cfg.Sources))
	var needsDashboard, needsAPI bool
	for _, s := range cfg.Sources {
		if _, dup := sourceNames[s.Name]; dup {
			return common.NewConfigurationError("sources", "name", fmt.Sprintf("duplicate source name '%s'", s.Name))
		}
		sourceNames[s.Name] = struct{}{}

		switch s.ToModel().Kind {
		case models.SourceKindAPI:
			needsAPI = true
		default:
			needsDashboard = true
			if s.URL == "" {
				return common.NewConfigurationError("sources", "url", fmt.Sprintf("dashboard source '%s' needs a url", s.Name))
			}
		}
	}

	if needsDashboard {
		if err := validateDashboard(cfg.Dashboard); err != nil {
			return err
		}
	}
	if needsAPI {
		if err := validateAPISource(cfg.APISource); err != nil {
			return err
		}
	}
	return nil
}

func validateDashboard(dc DashboardConfig) error {
	required := map[string]string{
		"login.url":               dc.Login.URL,
		"login.username_selector": dc.Login.UsernameSelector,
		"login.password_selector": dc.Login.PasswordSelector,
		"login.submit_selector":   dc.Login.SubmitSelector,
		"grid.container":          dc.Grid.Container,
		"grid.row":                dc.Grid.Row,
		"grid.identifier_column":  dc.Grid.IdentifierColumn,
		"grid.address_column":     dc.Grid.AddressColumn,
		"username":                dc.Username,
		"password":                dc.Password,
	}
	for _, field := range []string{
		"login.url", "login.username_selector", "login.password_selector", "login.submit_selector",
		"grid.container", "grid.row", "grid.identifier_column", "grid.address_column",
		"username", "password",
	} {
		if strings.TrimSpace(required[field]) == "" {
			return common.NewConfigurationError("dashboard", field, "required when a dashboard source is configured")
		}
	}
	return nil
}

func validateAPISource(ac APISourceConfig) error {
	switch {
	case ac.BaseURL == "":
		return common.NewConfigurationError("api_source", "base_url", "required when an api source is configured")
	case ac.Username == "" || ac.Password == "":
		return common.NewConfigurationError("api_source", "credentials", "username and password are required")
	case ac.PositionField == "":
		return common.NewConfigurationError("api_source", "position_field", "required")
	}
	return nil
}
