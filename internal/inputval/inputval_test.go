package inputval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@example.co.uk", true},
		{"a@b.co", true},
		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestEmailAndName(t *testing.T) {
	assert.Equal(t, "user@example.com", Email("  User@Example.COM "))
	assert.Equal(t, "Jean Dupont", Name("  Jean Dupont "))
}

func TestCheckName(t *testing.T) {
	assert.ErrorIs(t, CheckName("Al"), ErrNameLength)
	assert.NoError(t, CheckName("Ana"))
	assert.NoError(t, CheckName("Éloïse"))
	assert.NoError(t, CheckName(strings.Repeat("a", 25)))
	assert.ErrorIs(t, CheckName(strings.Repeat("a", 26)), ErrNameLength)
}

func TestCheckPassword(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("12345"), ErrPasswordShort)
	assert.NoError(t, CheckPassword("123456"))
	assert.NoError(t, CheckPassword(strings.Repeat("p", 1024)))
	assert.ErrorIs(t, CheckPassword(strings.Repeat("p", 1025)), ErrPasswordLong)
}

func TestCheckText(t *testing.T) {
	assert.NoError(t, CheckText(strings.Repeat("é", 500)))
	assert.ErrorIs(t, CheckText(strings.Repeat("x", 501)), ErrTextTooLong)
}
