package leads

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNameLength    = 2
	minSubjectLength = 3
	minPhoneDigits   = 10

	// DefaultMinMessageLength matches the deployed contact form.
	DefaultMinMessageLength = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Policy holds the intake rules that differ between site revisions.
type Policy struct {
	// MinMessageLength is the minimum trimmed message length. Values <= 1 only require a non-empty message.
	MinMessageLength int
	// SendConfirmation enables the acknowledgement email to the submitter.
	SendConfirmation bool
}

// DefaultPolicy returns the rules of the deployed contact form.
func DefaultPolicy() Policy {
	return Policy{MinMessageLength: DefaultMinMessageLength}
}

// Validate checks every field and returns all failures in field order.
// An empty result means the submission is acceptable.
func Validate(sub Submission, policy Policy) []string {
	var errs []string

	if runeLen(sub.Name) < minNameLength {
		errs = append(errs, fmt.Sprintf("Name must be at least %d characters", minNameLength))
	}

	if !ValidEmail(sub.Email) {
		errs = append(errs, "Valid email is required")
	}

	if strings.TrimSpace(sub.Phone) != "" && !ValidPhone(sub.Phone) {
		errs = append(errs, "Invalid phone number format")
	}

	if runeLen(sub.Subject) < minSubjectLength {
		errs = append(errs, fmt.Sprintf("Subject must be at least %d characters", minSubjectLength))
	}

	if policy.MinMessageLength <= 1 {
		if runeLen(sub.Message) == 0 {
			errs = append(errs, "Message is required")
		}
	} else if runeLen(sub.Message) < policy.MinMessageLength {
		errs = append(errs, fmt.Sprintf("Message must be at least %d characters", policy.MinMessageLength))
	}

	return errs
}

// ValidEmail reports whether email looks like local@domain.tld.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && emailPattern.MatchString(email)
}

// ValidPhone accepts digits, spaces, hyphens, parentheses and plus signs with at least ten digits.
func ValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}
	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ', r == '-', r == '(', r == ')', r == '+':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimFunc(s, unicode.IsSpace))
}
