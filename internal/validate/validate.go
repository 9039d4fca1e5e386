// Package validate checks single form fields against declarative rules.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule is the set of checks applied to one field. Zero values disable a check.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Email     bool

	Pattern        *regexp.Regexp
	PatternMessage string

	Min *float64
	Max *float64

	// Custom runs last and reports ok or a message.
	Custom func(value string) (bool, string)
}

// Field returns the first failing rule's message for value, or "" when the
// value passes. Rules run in a fixed order: required, length, email,
// pattern, numeric bounds, custom. An empty optional value passes.
func Field(name, value string, rule Rule) string {
	label := Label(name)
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		if rule.Required {
			return fmt.Sprintf("%s is required", label)
		}
		return ""
	}

	n := utf8.RuneCountInString(value)
	if rule.MinLength > 0 && n < rule.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", label, rule.MinLength)
	}
	if rule.MaxLength > 0 && n > rule.MaxLength {
		return fmt.Sprintf("%s must be no more than %d characters", label, rule.MaxLength)
	}

	if rule.Email && !emailPattern.MatchString(trimmed) {
		return "Please enter a valid email address"
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		if rule.PatternMessage != "" {
			return rule.PatternMessage
		}
		return fmt.Sprintf("%s is not in the expected format", label)
	}

	if rule.Min != nil || rule.Max != nil {
		num, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Sprintf("%s must be a number", label)
		}
		if rule.Min != nil && num < *rule.Min {
			return fmt.Sprintf("%s must be at least %s", label, formatNumber(*rule.Min))
		}
		if rule.Max != nil && num > *rule.Max {
			return fmt.Sprintf("%s must be no more than %s", label, formatNumber(*rule.Max))
		}
	}

	if rule.Custom != nil {
		if ok, msg := rule.Custom(value); !ok {
			if msg == "" {
				msg = fmt.Sprintf("%s is invalid", label)
			}
			return msg
		}
	}

	return ""
}

// Email reports whether value looks like an email address.
func Email(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// Label turns a field key such as "client1.fullName" into "Full name".
func Label(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "Field"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		case r == '_':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Float returns a pointer to f, for the optional bounds of a Rule.
func Float(f float64) *float64 { return &f }
