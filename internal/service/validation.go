package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxStringLength   = 255
	minPasswordLength = 8
)

var alphaDash = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func msgRequired(field string) string {
	return fmt.Sprintf("The %s field is required.", field)
}

func msgMaxLength(field string, max int) string {
	return fmt.Sprintf("The %s field must not be greater than %d characters.", field, max)
}

func msgTaken(field string) string {
	return fmt.Sprintf("The %s has already been taken.", field)
}

// requireString adds required and max-length messages. It reports whether the value passed.
func requireString(v *ValidationError, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, msgRequired(field))
		return false
	}
	if utf8.RuneCountInString(value) > maxStringLength {
		v.Add(field, msgMaxLength(field, maxStringLength))
		return false
	}
	return true
}

func validateEmail(v *ValidationError, email string) bool {
	if !requireString(v, "email", email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		v.Add("email", "The email field must be a valid email address.")
		return false
	}
	return true
}

func validateUsername(v *ValidationError, username string) bool {
	if !requireString(v, "username", username) {
		return false
	}
	if !alphaDash.MatchString(username) {
		v.Add("username", "The username field must only contain letters, numbers, dashes, and underscores.")
		return false
	}
	return true
}

func validatePassword(v *ValidationError, password string) bool {
	if password == "" {
		v.Add("password", msgRequired("password"))
		return false
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		v.Add("password", fmt.Sprintf("The password field must be at least %d characters.", minPasswordLength))
		return false
	}
	return true
}
