// Package json implements the JSON format of the logistics records.
package json

import (
	"go.dedis.ch/courier/contracts/logistics/types"
	"go.dedis.ch/courier/serde"
	"golang.org/x/xerrors"
)

func init() {
	types.RegisterMessageFormat(serde.FormatJSON, newMsgFormat())
}

// MemberJSON is the JSON representation of a member record.
type MemberJSON struct {
	Account    string
	Balance    uint64
	Reputation uint64
	Penalties  uint64
}

// DeliveryJSON is the JSON representation of a delivery record. The
// identifier is hex encoded.
type DeliveryJSON struct {
	ID              string
	Requester       string
	AssistingMember string `json:",omitempty"`
	Fee             uint64
	Status          uint8
}

// ReserveJSON is the JSON representation of the reserve record.
type ReserveJSON struct {
	Total  uint64
	Escrow uint64
}

// Message is the wrapper of the records. Exactly one field is set.
type Message struct {
	Member   *MemberJSON   `json:",omitempty"`
	Delivery *DeliveryJSON `json:",omitempty"`
	Reserve  *ReserveJSON  `json:",omitempty"`
}

// msgFormat is the engine to encode and decode the records in JSON format.
//
// - implements serde.FormatEngine
type msgFormat struct{}

func newMsgFormat() msgFormat {
	return msgFormat{}
}

// Encode implements serde.FormatEngine. It returns the serialized data for the
// message in JSON format.
func (f msgFormat) Encode(ctx serde.Context, message serde.Message) ([]byte, error) {
	var m Message

	switch in := message.(type) {
	case types.Member:
		m = Message{Member: &MemberJSON{
			Account:    string(in.Account),
			Balance:    uint64(in.Balance),
			Reputation: in.Reputation,
			Penalties:  in.Penalties,
		}}
	case types.Delivery:
		m = Message{Delivery: &DeliveryJSON{
			ID:              in.ID.String(),
			Requester:       string(in.Requester),
			AssistingMember: string(in.AssistingMember),
			Fee:             uint64(in.Fee),
			Status:          uint8(in.Status),
		}}
	case types.Reserve:
		m = Message{Reserve: &ReserveJSON{
			Total:  uint64(in.Total),
			Escrow: uint64(in.Escrow),
		}}
	default:
		return nil, xerrors.Errorf("unsupported message of type '%T'", message)
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It populates the message from the JSON
// data if appropriate, otherwise it returns an error.
func (f msgFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := Message{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't deserialize message: %v", err)
	}

	switch {
	case m.Member != nil:
		member := types.Member{
			Account:    types.Account(m.Member.Account),
			Balance:    types.Amount(m.Member.Balance),
			Reputation: m.Member.Reputation,
			Penalties:  m.Member.Penalties,
		}

		return member, nil
	case m.Delivery != nil:
		id, err := types.ParseDeliveryID(m.Delivery.ID)
		if err != nil {
			return nil, xerrors.Errorf("couldn't decode delivery: %v", err)
		}

		delivery := types.Delivery{
			ID:              id,
			Requester:       types.Account(m.Delivery.Requester),
			AssistingMember: types.Account(m.Delivery.AssistingMember),
			Fee:             types.Amount(m.Delivery.Fee),
			Status:          types.Status(m.Delivery.Status),
		}

		return delivery, nil
	case m.Reserve != nil:
		reserve := types.Reserve{
			Total:  types.Amount(m.Reserve.Total),
			Escrow: types.Amount(m.Reserve.Escrow),
		}

		return reserve, nil
	}

	return nil, xerrors.New("message is empty")
}
