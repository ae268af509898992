package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrEmptyName = errors.New("empty or invalid characters")

var phonePattern = regexp.MustCompile(`^(\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)

const passwordSymbols = "@$!%*?&#"

// Name length bounds used across the catalogue.
const (
	NameMin = 2
	NameMax = 50
)

// NormalizeName trims the input, drops every character outside letters, spaces,
// hyphens, apostrophes and (optionally) digits, collapses whitespace and
// capitalises each word. The result must be between min and max runes long.
func NormalizeName(name string, min, max int, allowDigits bool) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), r == '-', r == '\'':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case allowDigits && unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	if len(words) == 0 {
		return "", ErrEmptyName
	}
	for i, w := range words {
		words[i] = capitalize(w)
	}
	out := strings.Join(words, " ")

	if n := utf8.RuneCountInString(out); n < min || n > max {
		return "", fmt.Errorf("must be between %d and %d characters", min, max)
	}
	return out, nil
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

// NormalizePassword enforces the password policy: 8 to 20 characters with at least
// one lower-case letter, one upper-case letter, one digit and one of @$!%*?&#.
func NormalizePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < 8 || n > 20 {
		return errors.New("password must be between 8 and 20 characters")
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return fmt.Errorf("password contains an invalid character %q", r)
		}
	}
	switch {
	case !lower:
		return errors.New("password must contain a lower-case letter")
	case !upper:
		return errors.New("password must contain an upper-case letter")
	case !digit:
		return errors.New("password must contain a digit")
	case !symbol:
		return errors.New("password must contain one of " + passwordSymbols)
	}
	return nil
}

func IsPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
