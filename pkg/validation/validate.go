package validation

import (
	"errors"
	"fmt"
	"strings"

	"chatroom/pkg/models"
)

// Rules holds the configurable limits applied to incoming payloads. The
// zero value disables length limits.
type Rules struct {
	NameMaxLen int
	TextMaxLen int
}

var rules Rules

func SetRules(r Rules) { rules = r }

// ValidateName checks a participant name after sanitization.
func ValidateName(name string) error {
	var errs []string
	if name == "" {
		errs = append(errs, "name is required")
	}
	if rules.NameMaxLen > 0 && len(name) > rules.NameMaxLen {
		errs = append(errs, fmt.Sprintf("name too long: %d > %d", len(name), rules.NameMaxLen))
	}
	return join(errs)
}

// ValidateMessage checks a client message payload after sanitization.
// Clients may only post public or private messages; status messages are
// server-generated.
func ValidateMessage(to, text, typ string) error {
	var errs []string
	if to == "" {
		errs = append(errs, "to is required")
	}
	if text == "" {
		errs = append(errs, "text is required")
	}
	if typ != models.TypePublic && typ != models.TypePrivate {
		errs = append(errs, fmt.Sprintf("invalid type: %q", typ))
	}
	if rules.TextMaxLen > 0 && len(text) > rules.TextMaxLen {
		errs = append(errs, fmt.Sprintf("text too long: %d > %d", len(text), rules.TextMaxLen))
	}
	return join(errs)
}

func join(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, "; "))
}
