package logistics

import (
	"go.dedis.ch/courier/contracts/logistics/types"
	"golang.org/x/xerrors"
)

const (
	msgRegistrationFee = "Coin value is less than the required registration fee"
	msgAnonymous       = "caller has no account"
)

// Register creates the member record of the caller, or tops it up when it
// already exists. The reputation of an existing member is kept.
func (l *Ledger) Register(caller types.Account, deposit types.Amount) error {
	return l.execute("register", func(tx *ledgerTx) error {
		if caller == "" {
			return NotAuthorizedError{Reason: msgAnonymous}
		}

		if deposit < l.params.RegistrationFee {
			return InsufficientFeeError{
				Message:  msgRegistrationFee,
				Required: l.params.RegistrationFee,
			}
		}

		member, _, err := tx.getMember(caller)
		if err != nil {
			return err
		}

		member.Account = caller

		member.Balance, err = member.Balance.Add(deposit)
		if err != nil {
			return xerrors.Errorf("balance: %v", err)
		}

		err = tx.setMember(member)
		if err != nil {
			return err
		}

		err = tx.deposit(deposit, false)
		if err != nil {
			return err
		}

		tx.emit(Event{Kind: EventRegistered, Account: caller, Amount: deposit})

		return nil
	})
}

// Withdraw debits the balance of the caller and releases the amount through
// the vault. The balance must stay above the floor. The debit is staged before
// the vault is called, and a vault failure discards it.
func (l *Ledger) Withdraw(caller types.Account, amount types.Amount) error {
	return l.execute("withdraw", func(tx *ledgerTx) error {
		member, err := tx.requireMember(caller)
		if err != nil {
			return err
		}

		if member.Balance < amount || member.Balance-amount < l.params.BalanceFloor {
			return BalanceFloorError{
				Balance: member.Balance,
				Amount:  amount,
				Floor:   l.params.BalanceFloor,
			}
		}

		err = l.debitBalance(tx, caller, amount)
		if err != nil {
			return err
		}

		err = tx.payout(amount)
		if err != nil {
			return err
		}

		err = l.vault.Release(caller, amount)
		if err != nil {
			return xerrors.Errorf("failed to release funds: %v", err)
		}

		tx.emit(Event{Kind: EventWithdrawn, Account: caller, Amount: amount})

		return nil
	})
}

// GetMember returns the record of the account, or an unknown record error if
// the account has never registered.
func (l *Ledger) GetMember(account types.Account) (types.Member, error) {
	var member types.Member

	err := l.view(func(tx *ledgerTx) error {
		var err error
		member, err = tx.requireMember(account)
		return err
	})

	return member, err
}

// ListMembers returns the records of every registered member, ordered by
// account.
func (l *Ledger) ListMembers() ([]types.Member, error) {
	var members []types.Member

	err := l.view(func(tx *ledgerTx) error {
		return tx.members.Scan(nil, func(key, value []byte) error {
			member, err := tx.factory.MemberOf(tx.context, value)
			if err != nil {
				return xerrors.Errorf("failed to decode member '%s': %v", key, err)
			}

			members = append(members, member)

			return nil
		})
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to list members: %v", err)
	}

	return members, nil
}

// GetReserve returns the funds held by the ledger.
func (l *Ledger) GetReserve() (types.Reserve, error) {
	var reserve types.Reserve

	err := l.view(func(tx *ledgerTx) error {
		var err error
		reserve, err = tx.getReserve()
		return err
	})

	return reserve, err
}

// creditBalance adds the amount to the balance of the member.
func (l *Ledger) creditBalance(tx *ledgerTx, account types.Account, amount types.Amount) error {
	member, err := tx.requireMember(account)
	if err != nil {
		return err
	}

	member.Balance, err = member.Balance.Add(amount)
	if err != nil {
		return xerrors.Errorf("balance: %v", err)
	}

	return tx.setMember(member)
}

// debitBalance removes the amount from the balance of the member. The callers
// check the balance beforehand, so a debit below zero is a bug and it panics
// before anything is committed.
func (l *Ledger) debitBalance(tx *ledgerTx, account types.Account, amount types.Amount) error {
	member, err := tx.requireMember(account)
	if err != nil {
		return err
	}

	if member.Balance < amount {
		panic(xerrors.Errorf("invariant violation: debit of %s exceeds balance %s of '%s'",
			amount, member.Balance, account))
	}

	member.Balance -= amount

	return tx.setMember(member)
}

// bumpReputation increases the reputation of the member.
func (l *Ledger) bumpReputation(tx *ledgerTx, account types.Account, delta uint64) error {
	member, err := tx.requireMember(account)
	if err != nil {
		return err
	}

	member.Reputation += delta

	return tx.setMember(member)
}

// penalize records that the member abandoned an accepted delivery and returns
// the updated record.
func (l *Ledger) penalize(tx *ledgerTx, account types.Account) (types.Member, error) {
	member, err := tx.requireMember(account)
	if err != nil {
		return member, err
	}

	member.Penalties++

	return member, tx.setMember(member)
}
