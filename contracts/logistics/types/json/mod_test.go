package json

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/courier/contracts/logistics/types"
	"go.dedis.ch/courier/serde"
	sjson "go.dedis.ch/courier/serde/json"
	"go.dedis.ch/courier/testing/fake"
)

func TestMsgFormat_Encode(t *testing.T) {
	format := newMsgFormat()
	ctx := sjson.NewContext()

	data, err := format.Encode(ctx, types.Member{Account: "alice", Balance: 10, Reputation: 2})
	require.NoError(t, err)
	require.Equal(t,
		`{"Member":{"Account":"alice","Balance":10,"Reputation":2,"Penalties":0}}`,
		string(data))

	data, err = format.Encode(ctx, types.Reserve{Total: 5, Escrow: 1})
	require.NoError(t, err)
	require.Equal(t, `{"Reserve":{"Total":5,"Escrow":1}}`, string(data))

	_, err = format.Encode(ctx, fakeMessage{})
	require.EqualError(t, err, "unsupported message of type 'json.fakeMessage'")

	_, err = format.Encode(serde.NewContext(badEngine{}), types.Reserve{})
	require.EqualError(t, err, fake.Err("couldn't marshal"))
}

func TestMsgFormat_Decode(t *testing.T) {
	format := newMsgFormat()
	ctx := sjson.NewContext()

	delivery := types.Delivery{
		ID:              types.HashDeliveryDetails("Delivery Details"),
		Requester:       "alice",
		AssistingMember: "bob",
		Fee:             types.Coin / 2,
		Status:          types.Completed,
	}

	data, err := format.Encode(ctx, delivery)
	require.NoError(t, err)

	msg, err := format.Decode(ctx, data)
	require.NoError(t, err)
	require.Equal(t, delivery, msg)

	member := types.Member{Account: "bob", Balance: types.Coins(10), Penalties: 1}

	data, err = format.Encode(ctx, member)
	require.NoError(t, err)

	msg, err = format.Decode(ctx, data)
	require.NoError(t, err)
	require.Equal(t, member, msg)

	msg, err = format.Decode(ctx, []byte(`{"Reserve":{"Total":3,"Escrow":2}}`))
	require.NoError(t, err)
	require.Equal(t, types.Reserve{Total: 3, Escrow: 2}, msg)

	_, err = format.Decode(ctx, []byte(`{}`))
	require.EqualError(t, err, "message is empty")

	_, err = format.Decode(ctx, []byte(`{"Delivery":{"ID":"zz"}}`))
	require.Error(t, err)
	require.Regexp(t, "^couldn't decode delivery: invalid delivery id", err.Error())

	_, err = format.Decode(ctx, []byte(`[]`))
	require.Error(t, err)
	require.Regexp(t, "^couldn't deserialize message", err.Error())
}

func TestRegistration(t *testing.T) {
	ctx := sjson.NewContext()

	data, err := types.Member{Account: "carol"}.Serialize(ctx)
	require.NoError(t, err)

	member, err := types.NewMessageFactory().MemberOf(ctx, data)
	require.NoError(t, err)
	require.Equal(t, types.Account("carol"), member.Account)

	_, err = types.NewMessageFactory().DeliveryOf(ctx, data)
	require.EqualError(t, err, "invalid delivery 'types.Member'")
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeMessage struct {
	serde.Message
}

type badEngine struct {
	serde.ContextEngine
}

func (badEngine) GetFormat() serde.Format {
	return serde.FormatJSON
}

func (badEngine) Marshal(interface{}) ([]byte, error) {
	return nil, fake.GetError()
}
