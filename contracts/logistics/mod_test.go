package logistics

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/courier/contracts/logistics/types"
	"go.dedis.ch/courier/core/store"
	"go.dedis.ch/courier/core/store/kv"
	"go.dedis.ch/courier/core/store/mem"
	"go.dedis.ch/courier/testing/fake"
)

func TestNewLedger(t *testing.T) {
	ledger := makeLedger(t)

	require.Equal(t, DefaultParams(), ledger.Params())

	reserve, err := ledger.GetReserve()
	require.NoError(t, err)
	require.Equal(t, types.Reserve{Total: types.Coins(10)}, reserve)
}

func TestNewLedger_InvalidParams(t *testing.T) {
	params := DefaultParams()
	params.MinDeliveryFee = 0

	_, err := NewLedger(mem.NewStore(), WithParams(params))
	require.EqualError(t, err, "invalid params: minDeliveryFee must be positive")
}

func TestNewLedger_BadStore(t *testing.T) {
	_, err := NewLedger(fake.NewBadStore())
	require.EqualError(t, err, fake.Err("failed to initialize reserve"))

	s := fake.NewStore()
	s.Snapshot = fake.NewBadWriteSnapshot()

	_, err = NewLedger(s)
	require.EqualError(t, err,
		fake.Err("failed to initialize reserve: failed to write reserve"))
}

func TestNewLedger_Reopen(t *testing.T) {
	db, err := kv.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	defer db.Close()

	s := kv.NewStore(db, []byte("logistics"))

	ledger, err := NewLedger(s)
	require.NoError(t, err)

	require.NoError(t, ledger.Register("user1", types.Coins(12)))

	params := DefaultParams()
	params.InitialReserve = types.Coins(99)

	// The reserve is only provisioned once per store.
	ledger, err = NewLedger(s, WithParams(params))
	require.NoError(t, err)

	reserve, err := ledger.GetReserve()
	require.NoError(t, err)
	require.Equal(t, types.Coins(22), reserve.Total)

	requireBalance(t, ledger, "user1", types.Coins(12))
}

func TestLedger_Watch(t *testing.T) {
	ledger := makeLedger(t)

	obs := &fakeObserver{}
	ledger.Watch(obs)

	require.NoError(t, ledger.Register("user1", types.Coins(10)))
	require.Error(t, ledger.Register("user2", 1))

	require.Equal(t, []Event{
		{Kind: EventRegistered, Account: "user1", Amount: types.Coins(10)},
	}, obs.events)

	ledger.Unwatch(obs)

	require.NoError(t, ledger.Register("user2", types.Coins(10)))
	require.Len(t, obs.events, 1)
}

func TestLedger_Watch_ReadFromCallback(t *testing.T) {
	ledger := makeLedger(t)

	obs := &callbackObserver{}
	obs.fn = func(event Event) {
		member, err := ledger.GetMember(event.Account)
		if err == nil {
			obs.balances = append(obs.balances, member.Balance)
		}
	}

	ledger.Watch(obs)

	done := make(chan error, 1)
	go func() {
		done <- ledger.Register("user1", types.Coins(10))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("register did not return")
	}

	require.Equal(t, []types.Amount{types.Coins(10)}, obs.balances)
}

func TestLedger_Watch_UpdateFromCallback(t *testing.T) {
	ledger := makeLedger(t)

	var kinds []EventKind
	var accounts []types.Account

	obs := &callbackObserver{}
	obs.fn = func(event Event) {
		kinds = append(kinds, event.Kind)
		accounts = append(accounts, event.Account)

		if event.Account == "user1" && event.Kind == EventRegistered {
			require.NoError(t, ledger.Register("user2", types.Coins(10)))

			// The nested event is delivered after the current one.
			require.Len(t, accounts, 1)
		}
	}

	ledger.Watch(obs)

	require.NoError(t, ledger.Register("user1", types.Coins(10)))

	require.Equal(t, []EventKind{EventRegistered, EventRegistered}, kinds)
	require.Equal(t, []types.Account{"user1", "user2"}, accounts)
	requireBalance(t, ledger, "user2", types.Coins(10))
}

func TestLedger_LockIsPrivate(t *testing.T) {
	typ := reflect.TypeOf(&Ledger{})

	for _, name := range []string{"Lock", "Unlock", "RLock", "RUnlock"} {
		_, found := typ.MethodByName(name)
		require.False(t, found, name)
	}
}

func TestLedger_Logging(t *testing.T) {
	logger, check := fake.CheckLog("register committed")

	ledger := makeLedger(t, WithLogger(logger))

	require.NoError(t, ledger.Register("user1", types.Coins(10)))

	check(t)
}

func TestLedger_Logging_Order(t *testing.T) {
	buffer := new(bytes.Buffer)

	ledger := makeLedger(t, WithLogger(zerolog.New(buffer)))

	require.Error(t, ledger.Register("user1", 1))
	require.NoError(t, ledger.Register("user1", types.Coins(10)))
	require.NoError(t, ledger.Withdraw("user1", 0))

	require.Equal(t, []string{
		"operation rejected",
		"register committed",
		"funds released",
		"withdraw committed",
	}, fake.LoggedMessages(t, buffer))
}

func TestLedger_ReadOnlyView(t *testing.T) {
	ledger := makeLedger(t)

	err := ledger.view(func(tx *ledgerTx) error {
		return tx.setMember(types.Member{Account: "user1"})
	})
	require.EqualError(t, err, "failed to write member: read-only snapshot")

	err = ledger.view(func(tx *ledgerTx) error {
		return tx.deleteDelivery(types.DeliveryID{})
	})
	require.EqualError(t, err, "failed to delete delivery: read-only snapshot")
}

func TestLedgerTx_Decode(t *testing.T) {
	s := mem.NewStore()
	ledger := makeLedgerOn(t, s)

	err := s.Update(func(snap store.Snapshot) error {
		tx := ledger.newTx(snap)

		require.NoError(t, tx.members.Set([]byte("user1"), []byte("{}")))
		require.NoError(t, tx.deliveries.Set(make([]byte, 32), []byte("[]")))

		return nil
	})
	require.NoError(t, err)

	_, err = ledger.GetMember("user1")
	require.EqualError(t, err,
		"failed to decode member: couldn't decode message: message is empty")

	_, _, err = ledger.GetDelivery(types.DeliveryID{})
	require.Error(t, err)
	require.Regexp(t, "^failed to decode delivery: couldn't decode message", err.Error())
}

// -----------------------------------------------------------------------------
// Utility functions

func makeLedger(t *testing.T, opts ...LedgerOption) *Ledger {
	return makeLedgerOn(t, mem.NewStore(), opts...)
}

func makeLedgerOn(t *testing.T, s store.Store, opts ...LedgerOption) *Ledger {
	ledger, err := NewLedger(s, opts...)
	require.NoError(t, err)

	return ledger
}

func requireBalance(t *testing.T, ledger *Ledger, account types.Account, expected types.Amount) {
	member, err := ledger.GetMember(account)
	require.NoError(t, err)
	require.Equal(t, expected, member.Balance, "balance of %s", account)
}

type fakeRelease struct {
	account types.Account
	amount  types.Amount
}

type fakeVault struct {
	releases []fakeRelease
	err      error
}

func (v *fakeVault) Release(account types.Account, amount types.Amount) error {
	if v.err != nil {
		return v.err
	}

	v.releases = append(v.releases, fakeRelease{account, amount})

	return nil
}

type callbackObserver struct {
	fn       func(Event)
	balances []types.Amount
}

func (o *callbackObserver) NotifyCallback(event Event) {
	o.fn(event)
}

type fakeObserver struct {
	events []Event
}

func (o *fakeObserver) NotifyCallback(event Event) {
	o.events = append(o.events, event)
}
