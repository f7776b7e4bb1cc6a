package logistics

import (
	"github.com/rs/zerolog"
	"go.dedis.ch/courier/contracts/logistics/types"
)

// Vault is the collaborator that moves funds out of the ledger to the account
// of a participant.
type Vault interface {
	// Release transfers the amount to the account. An error aborts the
	// operation that requested the transfer.
	Release(account types.Account, amount types.Amount) error
}

// logVault is the default vault. It only records the transfers in the log as
// the funds are settled outside of the process.
//
// - implements logistics.Vault
type logVault struct {
	logger zerolog.Logger
}

// Release implements logistics.Vault.
func (v logVault) Release(account types.Account, amount types.Amount) error {
	v.logger.Info().
		Str("account", string(account)).
		Stringer("amount", amount).
		Msg("funds released")

	return nil
}
