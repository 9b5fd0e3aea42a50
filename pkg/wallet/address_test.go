package wallet

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestParseAddresses(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \t\n ", nil},
		{"comma separated", addrA + "," + addrB, []string{addrA, addrB}},
		{"mixed separators", addrA + " ,\n" + addrB, []string{addrA, addrB}},
		{"lowercased", "0x" + strings.ToUpper(addrA[2:]) + " " + addrB, []string{addrA, addrB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAddresses(tt.raw))
		})
	}
}

func TestParseAddressesDedupesMixedCase(t *testing.T) {
	raw := "0x" + strings.ToUpper(addrA[2:]) + ", " + addrA
	got := ParseAddresses(raw)
	require.Len(t, got, 1)
	assert.Equal(t, addrA, got[0])
}

func TestParseAddressesIdempotent(t *testing.T) {
	raw := addrB + " " + addrA + "," + addrA
	first := ParseAddresses(raw)
	second := ParseAddresses(strings.Join(first, ","))
	assert.Equal(t, first, second)
}

func TestValidateAddressesEmptyInput(t *testing.T) {
	_, err := ValidateAddresses("   ")
	require.ErrorIs(t, err, ErrNoAddresses)
}

func TestValidateAddressesListsEveryBadToken(t *testing.T) {
	_, err := ValidateAddresses("0x123 " + addrA + " nothex")
	require.Error(t, err)

	var invalid *InvalidAddressesError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{"0x123", "nothex"}, invalid.Tokens)
	assert.Contains(t, err.Error(), "0x123")
	assert.Contains(t, err.Error(), "nothex")
}

func TestValidateAddressesErrorPathsAreDistinct(t *testing.T) {
	_, emptyErr := ValidateAddresses("")
	_, badErr := ValidateAddresses("0x123")

	require.ErrorIs(t, emptyErr, ErrNoAddresses)
	require.NotErrorIs(t, badErr, ErrNoAddresses)

	var invalid *InvalidAddressesError
	require.True(t, errors.As(badErr, &invalid))
}

func TestValidateAddressesAllOrNothing(t *testing.T) {
	addrs, err := ValidateAddresses(addrA + " 0xZZ")
	assert.Nil(t, addrs)
	require.Error(t, err)
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress(addrA))
	assert.False(t, ValidAddress(addrA[2:]), "prefix is required")
	assert.False(t, ValidAddress("0x123"))
	assert.False(t, ValidAddress(addrA+"aa"))
}

func TestValidateAddressesHappyPath(t *testing.T) {
	addrs, err := ValidateAddresses(addrB + ", " + addrA)
	require.NoError(t, err)
	assert.Equal(t, []string{addrB, addrA}, addrs)
}
