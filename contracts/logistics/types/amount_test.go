package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	testCases := map[string]Amount{
		"10":          Coins(10),
		"0.5":         Coin / 2,
		".5":          Coin / 2,
		"10.5":        Coins(10) + Coin/2,
		"0.000000001": 1,
		"0":           0,
	}

	for input, expected := range testCases {
		amount, err := ParseAmount(input)
		require.NoError(t, err, input)
		require.Equal(t, expected, amount, input)
	}

	badInputs := []string{"", ".", "1.", "-1", "abc", "1.0000000001", "1.x",
		"99999999999999999999"}

	for _, input := range badInputs {
		_, err := ParseAmount(input)
		require.Error(t, err, input)
	}
}

func TestAmount_String(t *testing.T) {
	require.Equal(t, "10", Coins(10).String())
	require.Equal(t, "10.5", (Coins(10) + Coin/2).String())
	require.Equal(t, "0.000000001", Amount(1).String())
	require.Equal(t, "0", Amount(0).String())
}

func TestAmount_Add(t *testing.T) {
	sum, err := Coins(1).Add(Coins(2))
	require.NoError(t, err)
	require.Equal(t, Coins(3), sum)

	_, err = Amount(math.MaxUint64).Add(1)
	require.Error(t, err)
	require.Regexp(t, "^amount overflow", err.Error())
}

func TestAmount_Float(t *testing.T) {
	require.Equal(t, 10.5, (Coins(10) + Coin/2).Float())
}
