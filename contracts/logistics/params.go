package logistics

import (
	"os"

	"go.dedis.ch/courier/contracts/logistics/types"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Params are the monetary and reputation rules of the ledger.
type Params struct {
	// RegistrationFee is the minimum deposit accepted to register or top up.
	RegistrationFee types.Amount

	// BalanceFloor is the balance that a member must keep after a withdrawal.
	BalanceFloor types.Amount

	// MinDeliveryFee is the minimum fee of a delivery request.
	MinDeliveryFee types.Amount

	// MinReputation is the standing, reputation minus penalties, required to
	// post a delivery request.
	MinReputation int64

	// CancellationPenalty is moved from the balance of an assisting member to
	// the requester when the assisting member cancels an accepted delivery.
	CancellationPenalty types.Amount

	// InitialReserve is the amount provisioned to the ledger when it is
	// created.
	InitialReserve types.Amount
}

// DefaultParams returns the default rules: a deposit and a floor of 10 coins,
// a fee of at least one unit, and no penalty beyond the standing.
func DefaultParams() Params {
	return Params{
		RegistrationFee:     types.Coins(10),
		BalanceFloor:        types.Coins(10),
		MinDeliveryFee:      1,
		MinReputation:       0,
		CancellationPenalty: 0,
		InitialReserve:      types.Coins(10),
	}
}

// paramsFile is the YAML representation of the parameters. Amounts are
// decimal numbers of coins and missing keys keep their default.
type paramsFile struct {
	RegistrationFee     *string `yaml:"registrationFee"`
	BalanceFloor        *string `yaml:"balanceFloor"`
	MinDeliveryFee      *string `yaml:"minDeliveryFee"`
	MinReputation       *int64  `yaml:"minReputation"`
	CancellationPenalty *string `yaml:"cancellationPenalty"`
	InitialReserve      *string `yaml:"initialReserve"`
}

// LoadParams reads the parameters from a YAML file.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, xerrors.Errorf("failed to read params: %v", err)
	}

	params, err := ParseParams(data)
	if err != nil {
		return Params{}, xerrors.Errorf("failed to parse '%s': %v", path, err)
	}

	return params, nil
}

// ParseParams decodes the YAML representation of the parameters on top of the
// default ones.
func ParseParams(data []byte) (Params, error) {
	var file paramsFile

	err := yaml.UnmarshalStrict(data, &file)
	if err != nil {
		return Params{}, xerrors.Errorf("failed to decode yaml: %v", err)
	}

	params := DefaultParams()

	amounts := []struct {
		name  string
		value *string
		dest  *types.Amount
	}{
		{"registrationFee", file.RegistrationFee, &params.RegistrationFee},
		{"balanceFloor", file.BalanceFloor, &params.BalanceFloor},
		{"minDeliveryFee", file.MinDeliveryFee, &params.MinDeliveryFee},
		{"cancellationPenalty", file.CancellationPenalty, &params.CancellationPenalty},
		{"initialReserve", file.InitialReserve, &params.InitialReserve},
	}

	for _, a := range amounts {
		if a.value == nil {
			continue
		}

		amount, err := types.ParseAmount(*a.value)
		if err != nil {
			return Params{}, xerrors.Errorf("%s: %v", a.name, err)
		}

		*a.dest = amount
	}

	if file.MinReputation != nil {
		params.MinReputation = *file.MinReputation
	}

	err = params.Validate()
	if err != nil {
		return Params{}, err
	}

	return params, nil
}

// Validate returns an error if the rules cannot be enforced.
func (p Params) Validate() error {
	if p.MinDeliveryFee == 0 {
		return xerrors.New("minDeliveryFee must be positive")
	}

	return nil
}
