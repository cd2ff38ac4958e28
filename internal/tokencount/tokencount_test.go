package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedCounterCeilDivision(t *testing.T) {
	c := FixedCounter{CharsPerToken: 4}
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 1, c.Count("abc"))
	assert.Equal(t, 1, c.Count("abcd"))
	assert.Equal(t, 2, c.Count("abcde"))
	assert.Equal(t, 1000, c.Count(strings.Repeat("x", 4000)))
}

func TestFixedCounterDefaultsToFourChars(t *testing.T) {
	c := FixedCounter{}
	assert.Equal(t, 2, c.Count("12345678"))
}

func TestTiktokenCounterNeverZeroForText(t *testing.T) {
	c := NewTiktokenCounter()
	assert.Greater(t, c.Count("hello world"), 0)
	assert.Equal(t, 0, c.Count(""))
}
