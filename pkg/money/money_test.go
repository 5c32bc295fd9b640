package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":           "$0.00",
		"5":           "$5.00",
		"261":         "$261.00",
		"1234.5":      "$1,234.50",
		"1234567.891": "$1,234,567.89",
		"-9876.54":    "-$9,876.54",
	}
	for in, want := range cases {
		require.Equal(t, want, Format(decimal.RequireFromString(in)), "input %s", in)
	}
}
