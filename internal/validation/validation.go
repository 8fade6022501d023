// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"unicode/utf8"

	"wikiadmin/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Password bounds. Admin accounts predate any complexity policy, so only
// length is enforced.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

var (
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	hexColorRegex  = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
)

var reservedSubdomains = map[string]struct{}{
	"admin":   {},
	"api":     {},
	"auth":    {},
	"www":     {},
	"mail":    {},
	"static":  {},
	"cdn":     {},
	"uploads": {},
	"swagger": {},
	"metrics": {},
	"login":   {},
	"health":  {},
}

// Rules shared by request payload validators.
var (
	UsernameRule  = validation.By(func(v any) error { return ValidateUsername(toString(v)) })
	PasswordRule  = validation.By(func(v any) error { return ValidatePassword(toString(v)) })
	EmailRule     = is.EmailFormat
	SubdomainRule = validation.By(func(v any) error { return ValidateSubdomain(toString(v)) })
	HexColorRule  = validation.Match(hexColorRegex).Error("must be a hex color like #aabbcc")
)

// ValidatePassword checks the password length policy.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(username) > 50 {
		return fmt.Errorf("username must not exceed 50 characters")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks email syntax.
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return validation.Validate(email, validation.Required, is.EmailFormat)
}

// ValidateSubdomain validates wiki subdomain format and reserved names.
func ValidateSubdomain(subdomain string) error {
	if !subdomainRegex.MatchString(subdomain) {
		return fmt.Errorf("subdomain must contain only lowercase letters, numbers, and inner hyphens")
	}
	if _, exists := reservedSubdomains[subdomain]; exists {
		return fmt.Errorf("subdomain is reserved")
	}
	return nil
}

// AsAppError turns an ozzo validation result into a ValidationError naming
// the first offending field. Non-validation errors pass through unchanged.
func AsAppError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		keys := make([]string, 0, len(fieldErrs))
		for k := range fieldErrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) == 0 {
			return models.NewValidationError("invalid request")
		}
		appErr := models.NewValidationError(fmt.Sprintf("%s: %v", keys[0], fieldErrs[keys[0]]))
		appErr.Field = keys[0]
		return appErr
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return models.NewInternalError(err)
	}
	var ozzoErr validation.Error
	if errors.As(err, &ozzoErr) {
		return models.NewValidationError(ozzoErr.Error())
	}
	return err
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	}
	return fmt.Sprint(v)
}
