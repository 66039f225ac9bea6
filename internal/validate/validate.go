// Package validate holds the registration form predicate.
package validate

import (
	"errors"
	"regexp"
	"unicode"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ErrInvalidUserData is returned whenever any registration field fails its
// format check. The message is client-facing.
var ErrInvalidUserData = errors.New("Validation failed: username, email or password is invalid")

// UserData checks the format of the registration fields: the username must be
// at least three alphanumeric characters, the email must look like an email
// and the password must be non-empty.
func UserData(username, email, password string) error {
	if !validUsername(username) || !emailPattern.MatchString(email) || password == "" {
		return ErrInvalidUserData
	}
	return nil
}

func validUsername(username string) bool {
	if utf8.RuneCountInString(username) < 3 {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
