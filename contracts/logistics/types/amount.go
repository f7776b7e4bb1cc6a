package types

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Coin is the number of units in one coin. An amount is always expressed in
// units, which are the smallest indivisible part of the currency.
const Coin Amount = 1_000_000_000

// coinDecimals is the number of fractional digits of a coin.
const coinDecimals = 9

// Amount is a quantity of the currency counted in units.
type Amount uint64

// Coins returns a new amount of the given number of whole coins.
func Coins(n uint64) Amount {
	return Amount(n) * Coin
}

// ParseAmount parses a decimal number of coins like "10" or "0.5".
func ParseAmount(value string) (Amount, error) {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(value), ".")
	if whole == "" && frac == "" {
		return 0, xerrors.Errorf("invalid amount '%s'", value)
	}

	if hasFrac && frac == "" {
		return 0, xerrors.Errorf("invalid amount '%s'", value)
	}

	if len(frac) > coinDecimals {
		return 0, xerrors.Errorf("amount '%s' has more than %d decimals",
			value, coinDecimals)
	}

	var coins uint64
	if whole != "" {
		var err error
		coins, err = strconv.ParseUint(whole, 10, 64)
		if err != nil {
			return 0, xerrors.Errorf("invalid amount '%s': %v", value, err)
		}
	}

	var units uint64
	if frac != "" {
		padded := frac + strings.Repeat("0", coinDecimals-len(frac))

		var err error
		units, err = strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, xerrors.Errorf("invalid amount '%s': %v", value, err)
		}
	}

	if coins > (math.MaxUint64-units)/uint64(Coin) {
		return 0, xerrors.Errorf("amount '%s' overflows", value)
	}

	return Amount(coins*uint64(Coin) + units), nil
}

// Add returns the sum of both amounts, or an error if it overflows.
func (a Amount) Add(other Amount) (Amount, error) {
	if a > math.MaxUint64-other {
		return 0, xerrors.Errorf("amount overflow: %s + %s", a, other)
	}

	return a + other, nil
}

// Float returns the amount in coins. It is meant for display and metrics only.
func (a Amount) Float() float64 {
	return float64(a) / float64(Coin)
}

// String returns the amount formatted as a decimal number of coins.
func (a Amount) String() string {
	whole := uint64(a / Coin)
	frac := uint64(a % Coin)

	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}

	digits := strconv.FormatUint(frac, 10)
	digits = strings.Repeat("0", coinDecimals-len(digits)) + digits
	digits = strings.TrimRight(digits, "0")

	return strconv.FormatUint(whole, 10) + "." + digits
}
