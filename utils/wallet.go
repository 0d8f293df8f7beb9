// utils/wallet.go - wallet address helpers
package utils

import "strings"

// NormalizeWallet lowercases and trims a wallet address. All storage and
// lookups go through this so mixed-case submissions hit the same row.
func NormalizeWallet(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValidWallet checks the 0x-prefixed 20-byte hex address format.
func IsValidWallet(address string) bool {
	address = strings.TrimSpace(address)
	if len(address) != 42 {
		return false
	}
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	for _, r := range address[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
