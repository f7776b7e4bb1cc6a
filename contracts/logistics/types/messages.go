// Package types defines the records of the logistics ledger and their
// serialization.
package types

import (
	"go.dedis.ch/courier/serde"
	"go.dedis.ch/courier/serde/registry"
	"golang.org/x/xerrors"
)

var msgFormats = registry.NewSimpleRegistry()

// RegisterMessageFormat registers the engine for the provided format.
func RegisterMessageFormat(c serde.Format, f serde.FormatEngine) {
	msgFormats.Register(c, f)
}

// Member is the record of a registered account.
//
// - implements serde.Message
type Member struct {
	Account    Account
	Balance    Amount
	Reputation uint64

	// Penalties counts the accepted deliveries that the member abandoned.
	Penalties uint64
}

// Standing returns the reputation minus the penalties.
func (m Member) Standing() int64 {
	return int64(m.Reputation) - int64(m.Penalties)
}

// Serialize implements serde.Message.
func (m Member) Serialize(ctx serde.Context) ([]byte, error) {
	format := msgFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't encode member: %v", err)
	}

	return data, nil
}

// Status is the step of a delivery in its lifecycle.
type Status uint8

const (
	// Pending is the status of a request waiting for an assisting member. It is
	// also the status read for an unknown delivery.
	Pending Status = iota
	// Accepted is the status once an assisting member took the request.
	Accepted
	// Completed is the status once the assisting member claimed the delivery
	// is done.
	Completed
	// Confirmed is the final status once the requester confirmed the delivery
	// and the fee is paid.
	Confirmed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Accepted:
		return "Accepted"
	case Completed:
		return "Completed"
	case Confirmed:
		return "Confirmed"
	default:
		return "Unknown"
	}
}

// Delivery is the record of a delivery request and the fee held in escrow.
//
// - implements serde.Message
type Delivery struct {
	ID              DeliveryID
	Requester       Account
	AssistingMember Account
	Fee             Amount
	Status          Status
}

// Serialize implements serde.Message.
func (d Delivery) Serialize(ctx serde.Context) ([]byte, error) {
	format := msgFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, d)
	if err != nil {
		return nil, xerrors.Errorf("couldn't encode delivery: %v", err)
	}

	return data, nil
}

// Reserve is the record of the funds held by the ledger.
//
// - implements serde.Message
type Reserve struct {
	// Total is every unit held, balances and escrow included.
	Total Amount

	// Escrow is the part of the total held against delivery requests.
	Escrow Amount
}

// Serialize implements serde.Message.
func (r Reserve) Serialize(ctx serde.Context) ([]byte, error) {
	format := msgFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, r)
	if err != nil {
		return nil, xerrors.Errorf("couldn't encode reserve: %v", err)
	}

	return data, nil
}

// MessageFactory is the factory to deserialize the records of the ledger.
//
// - implements serde.Factory
type MessageFactory struct{}

// NewMessageFactory returns a new factory.
func NewMessageFactory() MessageFactory {
	return MessageFactory{}
}

// Deserialize implements serde.Factory.
func (MessageFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := msgFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("couldn't decode message: %v", err)
	}

	return msg, nil
}

// MemberOf deserializes the data into a member record.
func (f MessageFactory) MemberOf(ctx serde.Context, data []byte) (Member, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return Member{}, err
	}

	member, ok := msg.(Member)
	if !ok {
		return Member{}, xerrors.Errorf("invalid member '%T'", msg)
	}

	return member, nil
}

// DeliveryOf deserializes the data into a delivery record.
func (f MessageFactory) DeliveryOf(ctx serde.Context, data []byte) (Delivery, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return Delivery{}, err
	}

	delivery, ok := msg.(Delivery)
	if !ok {
		return Delivery{}, xerrors.Errorf("invalid delivery '%T'", msg)
	}

	return delivery, nil
}

// ReserveOf deserializes the data into a reserve record.
func (f MessageFactory) ReserveOf(ctx serde.Context, data []byte) (Reserve, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return Reserve{}, err
	}

	reserve, ok := msg.(Reserve)
	if !ok {
		return Reserve{}, xerrors.Errorf("invalid reserve '%T'", msg)
	}

	return reserve, nil
}
