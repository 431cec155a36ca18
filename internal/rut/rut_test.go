package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCheckDigit(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"12345678", "5"},
		{"11111111", "1"},
		{"10000013", "K"},
		{"6", "K"},
		{"0", "0"},
		{"", ""},
		{"12a45", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeCheckDigit(tt.body), "body %q", tt.body)
	}
}

func TestValidate(t *testing.T) {
	valid := []string{"12.345.678-5", "12345678-5", "123456785", "10.000.013-k", " 11111111-1 "}
	for _, v := range valid {
		assert.True(t, Validate(v), v)
	}

	invalid := []string{"", "5", "12.345.678-4", "12.3a5.678-5", "--", "K-K"}
	for _, v := range invalid {
		assert.False(t, Validate(v), v)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("10.000.013-k")
	require.NoError(t, err)
	assert.Equal(t, "10000013-K", got)

	_, err = Normalize("12.345.678-0")
	assert.ErrorIs(t, err, ErrInvalid)
}
