// Package logistics implements the ledger of a delivery brokering network.
//
// Participants register with a deposit to become members. A member posts a
// delivery request backed by a fee that the ledger holds in escrow. Another
// member accepts the request, completes it, and is paid the fee once the
// requester confirms it. An accepted request can be cancelled by either party,
// which returns the fee to the requester.
//
// The ledger is made of two parts working on the same store. The member
// ledger owns the balances and reputations and the delivery workflow owns the
// delivery records. The workflow updates the members only through the credit,
// debit, reputation and penalty primitives of the member ledger.
//
// Every operation is atomic: it runs in a single store update that is
// discarded when the operation fails. Operations are serialized by a single
// lock around the ledger.
package logistics

import (
	"sync"

	"github.com/rs/zerolog"
	"go.dedis.ch/courier"
	"go.dedis.ch/courier/contracts/logistics/types"
	"go.dedis.ch/courier/core/store"
	"go.dedis.ch/courier/core/store/prefixed"
	"go.dedis.ch/courier/serde"
	"go.dedis.ch/courier/serde/json"
	"golang.org/x/xerrors"

	// Static registration of the JSON format of the records.
	_ "go.dedis.ch/courier/contracts/logistics/types/json"
)

const (
	// ContractName is the name of the contract.
	ContractName = "go.dedis.ch/courier.Logistics"

	membersPrefix    = "members"
	deliveriesPrefix = "deliveries"
	metaPrefix       = "meta"
)

var reserveKey = []byte("reserve")

// LedgerOption is the type of option to create a ledger.
type LedgerOption func(*Ledger)

// WithParams sets the rules of the ledger.
func WithParams(params Params) LedgerOption {
	return func(l *Ledger) {
		l.params = params
	}
}

// WithVault sets the vault that releases the withdrawn funds.
func WithVault(vault Vault) LedgerOption {
	return func(l *Ledger) {
		l.vault = vault
	}
}

// WithLogger sets the logger of the ledger.
func WithLogger(logger zerolog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Ledger is the member ledger and the delivery workflow.
type Ledger struct {
	mu sync.RWMutex

	store   store.Store
	params  Params
	vault   Vault
	context serde.Context
	factory types.MessageFactory
	watcher *watcher
	logger  zerolog.Logger
}

// NewLedger creates a ledger on top of the store. The reserve is provisioned
// with the initial amount the first time the store is used.
func NewLedger(s store.Store, opts ...LedgerOption) (*Ledger, error) {
	logger := courier.Logger.With().Str("contract", ContractName).Logger()

	l := &Ledger{
		store:   s,
		params:  DefaultParams(),
		context: json.NewContext(),
		factory: types.NewMessageFactory(),
		watcher: newWatcher(),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.vault == nil {
		l.vault = logVault{logger: l.logger}
	}

	err := l.params.Validate()
	if err != nil {
		return nil, xerrors.Errorf("invalid params: %v", err)
	}

	var reserve types.Reserve

	err = s.Update(func(snap store.Snapshot) error {
		tx := l.newTx(snap)

		data, err := tx.meta.Get(reserveKey)
		if err != nil {
			return xerrors.Errorf("failed to read reserve: %v", err)
		}

		if data != nil {
			reserve, err = l.factory.ReserveOf(l.context, data)
			return err
		}

		reserve = types.Reserve{Total: l.params.InitialReserve}

		return tx.setReserve(reserve)
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to initialize reserve: %v", err)
	}

	promReserve.Set(reserve.Total.Float())
	promEscrow.Set(reserve.Escrow.Float())

	return l, nil
}

// Params returns the rules of the ledger.
func (l *Ledger) Params() Params {
	return l.params
}

// Watch adds the observer to the list of observers notified of the committed
// operations.
func (l *Ledger) Watch(obs Observer) {
	l.watcher.add(obs)
}

// Unwatch removes the observer.
func (l *Ledger) Unwatch(obs Observer) {
	l.watcher.remove(obs)
}

// execute runs the operation in a single store update. The events of the
// operation are delivered once the update is committed and the lock released.
func (l *Ledger) execute(operation string, fn func(tx *ledgerTx) error) error {
	err := l.commit(operation, fn)
	if err != nil {
		return err
	}

	l.watcher.drain()

	return nil
}

// commit applies the operation under the write lock and queues its events.
func (l *Ledger) commit(operation string, fn func(tx *ledgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var tx *ledgerTx

	err := l.store.Update(func(snap store.Snapshot) error {
		tx = l.newTx(snap)

		return fn(tx)
	})
	if err != nil {
		promOperations.WithLabelValues(operation, resultRejected).Inc()

		l.logger.Debug().Err(err).Str("operation", operation).Msg("operation rejected")

		return err
	}

	promOperations.WithLabelValues(operation, resultAccepted).Inc()

	if tx.reserve != nil {
		promReserve.Set(tx.reserve.Total.Float())
		promEscrow.Set(tx.reserve.Escrow.Float())
	}

	for _, event := range tx.events {
		l.logger.Info().
			Str("event", string(event.Kind)).
			Str("account", string(event.Account)).
			Str("counterparty", string(event.Counterparty)).
			Stringer("amount", event.Amount).
			Msgf("%s committed", operation)
	}

	l.watcher.enqueue(tx.events)

	return nil
}

// view runs the read-only callback on the committed state.
func (l *Ledger) view(fn func(tx *ledgerTx) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.store.View(func(r store.Readable) error {
		return fn(l.newTx(readOnly{Readable: r}))
	})
}

// ledgerTx gives access to the records of the ledger during an operation and
// collects the events it produces.
type ledgerTx struct {
	context serde.Context
	factory types.MessageFactory

	members    store.Snapshot
	deliveries store.Snapshot
	meta       store.Snapshot

	reserve *types.Reserve
	events  []Event
}

func (l *Ledger) newTx(snap store.Snapshot) *ledgerTx {
	return &ledgerTx{
		context:    l.context,
		factory:    l.factory,
		members:    prefixed.NewSnapshot(membersPrefix, snap),
		deliveries: prefixed.NewSnapshot(deliveriesPrefix, snap),
		meta:       prefixed.NewSnapshot(metaPrefix, snap),
	}
}

func (tx *ledgerTx) emit(event Event) {
	tx.events = append(tx.events, event)
}

// getMember returns the member record of the account and whether it exists.
func (tx *ledgerTx) getMember(account types.Account) (types.Member, bool, error) {
	data, err := tx.members.Get([]byte(account))
	if err != nil {
		return types.Member{}, false, xerrors.Errorf("failed to read member: %v", err)
	}

	if data == nil {
		return types.Member{}, false, nil
	}

	member, err := tx.factory.MemberOf(tx.context, data)
	if err != nil {
		return types.Member{}, false, xerrors.Errorf("failed to decode member: %v", err)
	}

	return member, true, nil
}

// requireMember returns the member record of the account, or an unknown
// record error.
func (tx *ledgerTx) requireMember(account types.Account) (types.Member, error) {
	member, found, err := tx.getMember(account)
	if err != nil {
		return member, err
	}

	if !found {
		return member, unknownMember(account)
	}

	return member, nil
}

func (tx *ledgerTx) setMember(member types.Member) error {
	data, err := member.Serialize(tx.context)
	if err != nil {
		return xerrors.Errorf("failed to serialize member: %v", err)
	}

	err = tx.members.Set([]byte(member.Account), data)
	if err != nil {
		return xerrors.Errorf("failed to write member: %v", err)
	}

	return nil
}

// getDelivery returns the delivery record and whether it exists.
func (tx *ledgerTx) getDelivery(id types.DeliveryID) (types.Delivery, bool, error) {
	data, err := tx.deliveries.Get(id[:])
	if err != nil {
		return types.Delivery{}, false, xerrors.Errorf("failed to read delivery: %v", err)
	}

	if data == nil {
		return types.Delivery{}, false, nil
	}

	delivery, err := tx.factory.DeliveryOf(tx.context, data)
	if err != nil {
		return types.Delivery{}, false, xerrors.Errorf("failed to decode delivery: %v", err)
	}

	return delivery, true, nil
}

// requireDelivery returns the delivery record, or an unknown record error.
func (tx *ledgerTx) requireDelivery(id types.DeliveryID) (types.Delivery, error) {
	delivery, found, err := tx.getDelivery(id)
	if err != nil {
		return delivery, err
	}

	if !found {
		return delivery, unknownDelivery(id)
	}

	return delivery, nil
}

func (tx *ledgerTx) setDelivery(delivery types.Delivery) error {
	data, err := delivery.Serialize(tx.context)
	if err != nil {
		return xerrors.Errorf("failed to serialize delivery: %v", err)
	}

	err = tx.deliveries.Set(delivery.ID[:], data)
	if err != nil {
		return xerrors.Errorf("failed to write delivery: %v", err)
	}

	return nil
}

func (tx *ledgerTx) deleteDelivery(id types.DeliveryID) error {
	err := tx.deliveries.Delete(id[:])
	if err != nil {
		return xerrors.Errorf("failed to delete delivery: %v", err)
	}

	return nil
}

func (tx *ledgerTx) getReserve() (types.Reserve, error) {
	if tx.reserve != nil {
		return *tx.reserve, nil
	}

	data, err := tx.meta.Get(reserveKey)
	if err != nil {
		return types.Reserve{}, xerrors.Errorf("failed to read reserve: %v", err)
	}

	if data == nil {
		return types.Reserve{}, nil
	}

	reserve, err := tx.factory.ReserveOf(tx.context, data)
	if err != nil {
		return types.Reserve{}, xerrors.Errorf("failed to decode reserve: %v", err)
	}

	return reserve, nil
}

func (tx *ledgerTx) setReserve(reserve types.Reserve) error {
	data, err := reserve.Serialize(tx.context)
	if err != nil {
		return xerrors.Errorf("failed to serialize reserve: %v", err)
	}

	err = tx.meta.Set(reserveKey, data)
	if err != nil {
		return xerrors.Errorf("failed to write reserve: %v", err)
	}

	tx.reserve = &reserve

	return nil
}

// deposit adds the amount carried in by a caller to the reserve, and to the
// escrow when it backs a delivery request.
func (tx *ledgerTx) deposit(amount types.Amount, escrowed bool) error {
	reserve, err := tx.getReserve()
	if err != nil {
		return err
	}

	reserve.Total, err = reserve.Total.Add(amount)
	if err != nil {
		return xerrors.Errorf("reserve: %v", err)
	}

	if escrowed {
		reserve.Escrow, err = reserve.Escrow.Add(amount)
		if err != nil {
			return xerrors.Errorf("escrow: %v", err)
		}
	}

	return tx.setReserve(reserve)
}

// payout removes the withdrawn amount from the reserve.
func (tx *ledgerTx) payout(amount types.Amount) error {
	reserve, err := tx.getReserve()
	if err != nil {
		return err
	}

	if reserve.Total < amount {
		panic(xerrors.Errorf("invariant violation: payout of %s exceeds reserve %s",
			amount, reserve.Total))
	}

	reserve.Total -= amount

	return tx.setReserve(reserve)
}

// releaseEscrow moves the amount out of the escrow. The funds stay in the
// reserve as they are credited to a member.
func (tx *ledgerTx) releaseEscrow(amount types.Amount) error {
	reserve, err := tx.getReserve()
	if err != nil {
		return err
	}

	if reserve.Escrow < amount {
		panic(xerrors.Errorf("invariant violation: release of %s exceeds escrow %s",
			amount, reserve.Escrow))
	}

	reserve.Escrow -= amount

	return tx.setReserve(reserve)
}

// readOnly is a snapshot over a readable that refuses the writes.
//
// - implements store.Snapshot
type readOnly struct {
	store.Readable
}

func (readOnly) Set([]byte, []byte) error {
	return xerrors.New("read-only snapshot")
}

func (readOnly) Delete([]byte) error {
	return xerrors.New("read-only snapshot")
}
