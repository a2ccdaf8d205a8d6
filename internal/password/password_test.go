package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	digest, err := h.Hash("Password1")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1", digest)

	assert.True(t, h.Verify(digest, "Password1"))
	assert.False(t, h.Verify(digest, "password1"))
	assert.False(t, h.Verify("", "Password1"))
	assert.False(t, h.Verify("not-a-digest", "Password1"))
}

func TestBcrypt_DigestsAreSalted(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	a, err := h.Hash("Password1")
	require.NoError(t, err)
	b, err := h.Hash("Password1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewBcrypt_InvalidCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(99).cost)
	assert.Equal(t, 5, NewBcrypt(5).cost)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Password1", true},
		{"aB3def", true},
		{"aB3de", false},
		{"password1", false},
		{"PASSWORD1", false},
		{"Password", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := Validate(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrTooWeak)
			}
		})
	}
}

func TestValidate_TooLong(t *testing.T) {
	long := "Aa1" + strings.Repeat("x", 80)
	assert.ErrorIs(t, Validate(long), ErrTooLong)

	limit := "Aa1" + strings.Repeat("x", MaxBytes-3)
	require.NoError(t, Validate(limit))

	_, err := NewBcrypt(bcrypt.MinCost).Hash(limit)
	assert.NoError(t, err)
}
