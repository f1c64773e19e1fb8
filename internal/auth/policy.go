package auth

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

//go:embed common_passwords.txt
var commonPasswordList string

// PolicyError describes why a password was rejected. Message is safe to show
// to the caller.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string {
	return e.Message
}

// PasswordPolicy checks candidate passwords against strength rules.
type PasswordPolicy struct {
	minLength int
	common    map[string]struct{}
}

// NewPasswordPolicy creates a policy requiring at least minLength characters.
func NewPasswordPolicy(minLength int) *PasswordPolicy {
	common := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordList, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			common[p] = struct{}{}
		}
	}
	return &PasswordPolicy{minLength: minLength, common: common}
}

// Validate applies the rules in order and returns the first failure as a
// *PolicyError.
func (p *PasswordPolicy) Validate(password string) error {
	err := validation.Validate(password,
		validation.RuneLength(p.minLength, 0).Error(p.tooShortMessage()),
		validation.By(p.notCommon),
		validation.By(notNumeric),
	)
	if err != nil {
		return &PolicyError{Message: err.Error()}
	}
	return nil
}

func (p *PasswordPolicy) tooShortMessage() string {
	unit := "characters"
	if p.minLength == 1 {
		unit = "character"
	}
	return fmt.Sprintf("This password is too short. It must contain at least %d %s.", p.minLength, unit)
}

func (p *PasswordPolicy) notCommon(value interface{}) error {
	if _, ok := p.common[strings.ToLower(strings.TrimSpace(value.(string)))]; ok {
		return errors.New("This password is too common.")
	}
	return nil
}

func notNumeric(value interface{}) error {
	s := value.(string)
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return nil
		}
	}
	return errors.New("This password is entirely numeric.")
}
