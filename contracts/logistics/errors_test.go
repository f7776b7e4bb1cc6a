package logistics

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/courier/contracts/logistics/types"
	"golang.org/x/xerrors"
)

func TestErrors_Is(t *testing.T) {
	errs := []error{
		InsufficientFeeError{},
		NotAuthorizedError{},
		InvalidStateError{},
		BalanceFloorError{},
		UnknownRecordError{},
	}

	for i, err := range errs {
		wrapped := xerrors.Errorf("operation: %w", err)

		for j, other := range errs {
			require.Equal(t, i == j, xerrors.Is(wrapped, other), "%T is %T", err, other)
		}
	}
}

func TestErrors_Message(t *testing.T) {
	id := types.HashDeliveryDetails("details")

	err := InvalidStateError{Delivery: id, Status: types.Completed, Operation: "cancel"}
	require.EqualError(t, err,
		"invalid state: cannot cancel delivery "+id.String()[:8]+" in status Completed")

	err2 := InsufficientFeeError{Message: "too low", Required: types.Coins(2)}
	require.EqualError(t, err2, "insufficient fee: too low (required 2)")

	require.EqualError(t, unknownDelivery(id), "unknown delivery '"+id.String()+"'")
}
