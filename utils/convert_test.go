// Package utils
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBigInt(t *testing.T) {
	n, ok := ParseBigInt("12345678901234567890123456789")
	assert.True(t, ok)
	assert.Equal(t, "12345678901234567890123456789", n.String())

	_, ok = ParseBigInt("")
	assert.False(t, ok)

	_, ok = ParseBigInt("-5")
	assert.False(t, ok)

	_, ok = ParseBigInt("0xdead")
	assert.False(t, ok)

	zero, ok := ParseBigInt("0")
	assert.True(t, ok)
	assert.Equal(t, int64(0), zero.Int64())
}
