package logistics

import (
	"fmt"

	"go.dedis.ch/courier/contracts/logistics/types"
)

// The errors of the ledger are typed so that a caller can react to the kind of
// failure with xerrors.Is or extract the details with xerrors.As. Is only
// compares the kind of the error, never the details.

// InsufficientFeeError is returned when a registration deposit or a delivery
// fee is below the minimum.
type InsufficientFeeError struct {
	Message  string
	Required types.Amount
}

func (err InsufficientFeeError) Error() string {
	return fmt.Sprintf("insufficient fee: %s (required %s)", err.Message, err.Required)
}

// Is returns true when the other error is an insufficient fee error.
func (err InsufficientFeeError) Is(other error) bool {
	_, ok := other.(InsufficientFeeError)
	return ok
}

// NotAuthorizedError is returned when the caller is not allowed to perform the
// operation, including when its reputation is too low.
type NotAuthorizedError struct {
	Reason string
}

func (err NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized: %s", err.Reason)
}

// Is returns true when the other error is a not authorized error.
func (err NotAuthorizedError) Is(other error) bool {
	_, ok := other.(NotAuthorizedError)
	return ok
}

// InvalidStateError is returned when an operation is attempted on a delivery
// whose status does not allow it.
type InvalidStateError struct {
	Delivery  types.DeliveryID
	Status    types.Status
	Operation string
}

func (err InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: cannot %s delivery %x in status %v",
		err.Operation, err.Delivery[:4], err.Status)
}

// Is returns true when the other error is an invalid state error.
func (err InvalidStateError) Is(other error) bool {
	_, ok := other.(InvalidStateError)
	return ok
}

// BalanceFloorError is returned when a withdrawal would leave the balance of
// the member below the floor.
type BalanceFloorError struct {
	Balance types.Amount
	Amount  types.Amount
	Floor   types.Amount
}

func (err BalanceFloorError) Error() string {
	return fmt.Sprintf("withdrawal would reduce balance below %s (balance %s, amount %s)",
		err.Floor, err.Balance, err.Amount)
}

// Is returns true when the other error is a balance floor error.
func (err BalanceFloorError) Is(other error) bool {
	_, ok := other.(BalanceFloorError)
	return ok
}

// UnknownRecordError is returned when a member or a delivery does not exist.
type UnknownRecordError struct {
	Kind string
	Key  string
}

func (err UnknownRecordError) Error() string {
	return fmt.Sprintf("unknown %s '%s'", err.Kind, err.Key)
}

// Is returns true when the other error is an unknown record error.
func (err UnknownRecordError) Is(other error) bool {
	_, ok := other.(UnknownRecordError)
	return ok
}

func unknownMember(account types.Account) UnknownRecordError {
	return UnknownRecordError{Kind: "member", Key: string(account)}
}

func unknownDelivery(id types.DeliveryID) UnknownRecordError {
	return UnknownRecordError{Kind: "delivery", Key: id.String()}
}
