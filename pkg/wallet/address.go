// Package wallet parses and validates Polygon wallet addresses submitted by
// the user. Validation is all-or-nothing: one malformed address rejects the
// whole submission.
package wallet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNoAddresses is returned when the input yields zero tokens.
var ErrNoAddresses = errors.New("provide at least one wallet address")

// InvalidAddressesError lists every malformed token in a submission, not just
// the first one.
type InvalidAddressesError struct {
	Tokens []string
}

func (e *InvalidAddressesError) Error() string {
	return fmt.Sprintf("invalid addresses: %s", strings.Join(e.Tokens, ", "))
}

var splitRe = regexp.MustCompile(`[\s,]+`)

// ParseAddresses splits raw input on whitespace/comma runs, lowercases,
// drops empty tokens and dedupes preserving first-seen order. Pure, no
// validation.
func ParseAddresses(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range splitRe.Split(raw, -1) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// ValidAddress reports whether s is a 0x-prefixed 40-hex-char address.
// common.IsHexAddress accepts unprefixed input, so the prefix is checked
// explicitly.
func ValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ValidateAddresses parses raw input and validates every token. Returns
// ErrNoAddresses for empty input, or *InvalidAddressesError naming every
// malformed token.
func ValidateAddresses(raw string) ([]string, error) {
	addrs := ParseAddresses(raw)
	if len(addrs) == 0 {
		return nil, ErrNoAddresses
	}
	var bad []string
	for _, a := range addrs {
		if !ValidAddress(a) {
			bad = append(bad, a)
		}
	}
	if len(bad) > 0 {
		return nil, &InvalidAddressesError{Tokens: bad}
	}
	return addrs, nil
}

// Abbrev shortens an address for log output.
func Abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}
