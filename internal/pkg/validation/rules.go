package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule limits
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	NameMinLength = 2
	NameMaxLength = 100

	BioMaxLength      = 500
	PostMaxLength     = 5000
	CommentMaxLength  = 1000
	MessageMaxLength  = 4000
	TitleMaxLength    = 200
	CategoryMaxLength = 100
	SkillMaxLength    = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// StringValidation checks one string value. Lengths count runes.
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	value := strings.TrimSpace(v.Value)
	if value == "" {
		return !v.Required
	}

	n := utf8.RuneCountInString(value)
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(value) {
		return false
	}
	return true
}

// IsValidEmail checks the address against EmailPattern after lowercasing.
func IsValidEmail(email string) bool {
	return NewStringValidation(strings.ToLower(email)).WithPattern(CompiledPatterns.Email).Validate()
}

// IsValidDisplayName checks the display name length bounds.
func IsValidDisplayName(name string) bool {
	return NewStringValidation(name).WithMinLength(NameMinLength).WithMaxLength(NameMaxLength).Validate()
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsOptionalHTTPURL is IsHTTPURL but accepts the empty string.
func IsOptionalHTTPURL(raw string) bool {
	return strings.TrimSpace(raw) == "" || IsHTTPURL(raw)
}
