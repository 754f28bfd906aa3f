// Package utils
package utils

import (
	"math/big"
)

// ParseBigInt parses a non-negative decimal string. Proposal identifiers are
// chain-assigned 256-bit integers and arrive as decimal text.
func ParseBigInt(data string) (*big.Int, bool) {
	if data == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(data, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}
