// Package inputval normalizes and checks user account fields.
package inputval

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	NameMin     = 3
	NameMax     = 25
	PasswordMin = 6
	PasswordMax = 1024
	TextMax     = 500
)

var (
	ErrNameLength    = errors.New("Le prénom et le nom doivent contenir entre 3 et 25 caractères.")
	ErrEmailInvalid  = errors.New("Adresse email invalide.")
	ErrPasswordShort = errors.New("Le mot de passe doit contenir au moins 6 caractères.")
	ErrPasswordLong  = errors.New("Le mot de passe ne doit pas dépasser 1024 caractères.")
	ErrTextTooLong   = errors.New("Le texte ne doit pas dépasser 500 caractères.")
)

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and keeps case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// IsValidEmail accepts a bare addr-spec: no display name, no spaces, and no
// leading, trailing or doubled dots in either part.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	local, domain := s[:at], s[at+1:]
	return dotsOK(local) && dotsOK(domain)
}

func dotsOK(part string) bool {
	return part != "" &&
		!strings.HasPrefix(part, ".") &&
		!strings.HasSuffix(part, ".") &&
		!strings.Contains(part, "..")
}

// CheckName validates an already trimmed first or last name.
func CheckName(s string) error {
	n := utf8.RuneCountInString(s)
	if n < NameMin || n > NameMax {
		return ErrNameLength
	}
	return nil
}

// CheckPassword validates password length in characters.
func CheckPassword(s string) error {
	n := utf8.RuneCountInString(s)
	switch {
	case n < PasswordMin:
		return ErrPasswordShort
	case n > PasswordMax:
		return ErrPasswordLong
	}
	return nil
}

// CheckText validates the length of a post message or comment.
func CheckText(s string) error {
	if utf8.RuneCountInString(s) > TextMax {
		return ErrTextTooLong
	}
	return nil
}
