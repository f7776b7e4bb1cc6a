package logistics

import (
	"go.dedis.ch/courier/contracts/logistics/types"
)

const (
	msgLowReputation = "You have a low reputation. Complete more deliveries " +
		"to increase your reputation"
	msgDeliveryFee  = "delivery fee is less than the minimum"
	msgSelfAccept   = "requester cannot accept its own delivery"
	msgNotAssistant = "only the assisting member can complete the delivery"
	msgNotRequester = "only the requester can confirm the delivery"
	msgNotParty     = "only the requester or the assisting member can cancel the delivery"
)

// RequestForDelivery posts a delivery request. The fee is carried in by the
// caller and held in escrow until the delivery is confirmed or cancelled. It
// is not taken from the registered balance.
func (l *Ledger) RequestForDelivery(caller types.Account, id types.DeliveryID, fee types.Amount) error {
	return l.execute("request", func(tx *ledgerTx) error {
		member, err := tx.requireMember(caller)
		if err != nil {
			return err
		}

		if member.Standing() < l.params.MinReputation {
			return NotAuthorizedError{Reason: msgLowReputation}
		}

		existing, found, err := tx.getDelivery(id)
		if err != nil {
			return err
		}

		if found {
			return InvalidStateError{
				Delivery:  id,
				Status:    existing.Status,
				Operation: "request",
			}
		}

		if fee < l.params.MinDeliveryFee {
			return InsufficientFeeError{
				Message:  msgDeliveryFee,
				Required: l.params.MinDeliveryFee,
			}
		}

		delivery := types.Delivery{
			ID:        id,
			Requester: caller,
			Fee:       fee,
			Status:    types.Pending,
		}

		err = tx.setDelivery(delivery)
		if err != nil {
			return err
		}

		err = tx.deposit(fee, true)
		if err != nil {
			return err
		}

		tx.emit(Event{Kind: EventRequested, Account: caller, Delivery: id, Amount: fee})

		return nil
	})
}

// RespondToDeliveryRequest makes the caller the assisting member of a pending
// delivery.
func (l *Ledger) RespondToDeliveryRequest(caller types.Account, id types.DeliveryID) error {
	return l.execute("respond", func(tx *ledgerTx) error {
		delivery, err := tx.requireDelivery(id)
		if err != nil {
			return err
		}

		err = checkStatus(delivery, types.Pending, "accept")
		if err != nil {
			return err
		}

		_, err = tx.requireMember(caller)
		if err != nil {
			return err
		}

		if caller == delivery.Requester {
			return NotAuthorizedError{Reason: msgSelfAccept}
		}

		delivery.AssistingMember = caller
		delivery.Status = types.Accepted

		err = tx.setDelivery(delivery)
		if err != nil {
			return err
		}

		tx.emit(Event{
			Kind:         EventAccepted,
			Account:      caller,
			Counterparty: delivery.Requester,
			Delivery:     id,
		})

		return nil
	})
}

// MarkDeliveryAsCompleted records the claim of the assisting member that the
// delivery is done. No fund moves until the requester confirms.
func (l *Ledger) MarkDeliveryAsCompleted(caller types.Account, id types.DeliveryID) error {
	return l.execute("complete", func(tx *ledgerTx) error {
		delivery, err := tx.requireDelivery(id)
		if err != nil {
			return err
		}

		err = checkStatus(delivery, types.Accepted, "complete")
		if err != nil {
			return err
		}

		if caller != delivery.AssistingMember {
			return NotAuthorizedError{Reason: msgNotAssistant}
		}

		delivery.Status = types.Completed

		err = tx.setDelivery(delivery)
		if err != nil {
			return err
		}

		tx.emit(Event{
			Kind:         EventCompleted,
			Account:      caller,
			Counterparty: delivery.Requester,
			Delivery:     id,
		})

		return nil
	})
}

// MarkDeliveryAsConfirmed pays the fee to the assisting member and increases
// its reputation. The record is kept in the final status and can never be
// used again.
func (l *Ledger) MarkDeliveryAsConfirmed(caller types.Account, id types.DeliveryID) error {
	return l.execute("confirm", func(tx *ledgerTx) error {
		delivery, err := tx.requireDelivery(id)
		if err != nil {
			return err
		}

		err = checkStatus(delivery, types.Completed, "confirm")
		if err != nil {
			return err
		}

		if caller != delivery.Requester {
			return NotAuthorizedError{Reason: msgNotRequester}
		}

		err = tx.releaseEscrow(delivery.Fee)
		if err != nil {
			return err
		}

		err = l.creditBalance(tx, delivery.AssistingMember, delivery.Fee)
		if err != nil {
			return err
		}

		err = l.bumpReputation(tx, delivery.AssistingMember, 1)
		if err != nil {
			return err
		}

		delivery.Status = types.Confirmed

		err = tx.setDelivery(delivery)
		if err != nil {
			return err
		}

		tx.emit(Event{
			Kind:         EventConfirmed,
			Account:      caller,
			Counterparty: delivery.AssistingMember,
			Delivery:     id,
			Amount:       delivery.Fee,
		})

		return nil
	})
}

// MarkDeliveryAsCancelled cancels an accepted delivery on behalf of either
// party. The fee goes back to the balance of the requester and the record is
// deleted, so that the identifier can be requested again. An assisting member
// that cancels receives a penalty and pays the cancellation penalty of the
// params, up to its balance, to the requester.
func (l *Ledger) MarkDeliveryAsCancelled(caller types.Account, id types.DeliveryID) error {
	return l.execute("cancel", func(tx *ledgerTx) error {
		delivery, err := tx.requireDelivery(id)
		if err != nil {
			return err
		}

		err = checkStatus(delivery, types.Accepted, "cancel")
		if err != nil {
			return err
		}

		counterparty := delivery.AssistingMember

		switch caller {
		case delivery.Requester:
		case delivery.AssistingMember:
			counterparty = delivery.Requester
		default:
			return NotAuthorizedError{Reason: msgNotParty}
		}

		err = tx.releaseEscrow(delivery.Fee)
		if err != nil {
			return err
		}

		err = l.creditBalance(tx, delivery.Requester, delivery.Fee)
		if err != nil {
			return err
		}

		if caller == delivery.AssistingMember {
			err = l.chargePenalty(tx, delivery)
			if err != nil {
				return err
			}
		}

		err = tx.deleteDelivery(id)
		if err != nil {
			return err
		}

		tx.emit(Event{
			Kind:         EventCancelled,
			Account:      caller,
			Counterparty: counterparty,
			Delivery:     id,
			Amount:       delivery.Fee,
		})

		return nil
	})
}

// GetDelivery returns the record of the delivery and whether it exists. An
// unknown delivery reads as the zero record, which has the pending status.
func (l *Ledger) GetDelivery(id types.DeliveryID) (types.Delivery, bool, error) {
	var delivery types.Delivery
	var found bool

	err := l.view(func(tx *ledgerTx) error {
		var err error
		delivery, found, err = tx.getDelivery(id)
		return err
	})

	return delivery, found, err
}

func (l *Ledger) chargePenalty(tx *ledgerTx, delivery types.Delivery) error {
	member, err := l.penalize(tx, delivery.AssistingMember)
	if err != nil {
		return err
	}

	amount := l.params.CancellationPenalty
	if amount > member.Balance {
		amount = member.Balance
	}

	if amount == 0 {
		return nil
	}

	err = l.debitBalance(tx, delivery.AssistingMember, amount)
	if err != nil {
		return err
	}

	return l.creditBalance(tx, delivery.Requester, amount)
}

func checkStatus(delivery types.Delivery, expected types.Status, op string) error {
	if delivery.Status != expected {
		return InvalidStateError{
			Delivery:  delivery.ID,
			Status:    delivery.Status,
			Operation: op,
		}
	}

	return nil
}
