package logistics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/courier/contracts/logistics/types"
)

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]byte(`
registrationFee: "5"
minDeliveryFee: "0.25"
minReputation: -2
cancellationPenalty: "1.5"
`))
	require.NoError(t, err)

	expected := DefaultParams()
	expected.RegistrationFee = types.Coins(5)
	expected.MinDeliveryFee = types.Coin / 4
	expected.MinReputation = -2
	expected.CancellationPenalty = types.Coins(1) + types.Coin/2

	require.Equal(t, expected, params)

	params, err = ParseParams(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultParams(), params)
}

func TestParseParams_Invalid(t *testing.T) {
	_, err := ParseParams([]byte(`unknownKey: 1`))
	require.Error(t, err)
	require.Regexp(t, "^failed to decode yaml: ", err.Error())

	_, err = ParseParams([]byte(`balanceFloor: "ten"`))
	require.Error(t, err)
	require.Regexp(t, "^balanceFloor: invalid amount 'ten'", err.Error())

	_, err = ParseParams([]byte(`minDeliveryFee: "0"`))
	require.EqualError(t, err, "minDeliveryFee must be positive")
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")

	err := os.WriteFile(path, []byte(`initialReserve: "100"`), 0600)
	require.NoError(t, err)

	params, err := LoadParams(path)
	require.NoError(t, err)
	require.Equal(t, types.Coins(100), params.InitialReserve)

	_, err = LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Regexp(t, "^failed to read params: ", err.Error())

	err = os.WriteFile(path, []byte(`initialReserve: "-1"`), 0600)
	require.NoError(t, err)

	_, err = LoadParams(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse '"+path+"': initialReserve")
}
