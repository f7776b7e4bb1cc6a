package controller

import (
	"fmt"

	"go.dedis.ch/courier/cli"
	"go.dedis.ch/courier/cli/node"
	"go.dedis.ch/courier/contracts/logistics"
	"go.dedis.ch/courier/contracts/logistics/types"
	"go.dedis.ch/courier/proxy"
	"golang.org/x/xerrors"
)

// registerAction registers a member or tops up its balance.
//
// - implements node.ActionTemplate
type registerAction struct{}

// Execute implements node.ActionTemplate.
func (registerAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	account := types.Account(ctx.Flags.String(accountFlag))

	amount, err := parseAmount(ctx.Flags, amountFlag)
	if err != nil {
		return err
	}

	err = ledger.Register(account, amount)
	if err != nil {
		return xerrors.Errorf("failed to register: %v", err)
	}

	fmt.Fprintf(ctx.Out, "registered %s with %s", account, amount)

	return nil
}

// withdrawAction withdraws from the balance of a member.
//
// - implements node.ActionTemplate
type withdrawAction struct{}

// Execute implements node.ActionTemplate.
func (withdrawAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	account := types.Account(ctx.Flags.String(accountFlag))

	amount, err := parseAmount(ctx.Flags, amountFlag)
	if err != nil {
		return err
	}

	err = ledger.Withdraw(account, amount)
	if err != nil {
		return xerrors.Errorf("failed to withdraw: %v", err)
	}

	fmt.Fprintf(ctx.Out, "withdrew %s from %s", amount, account)

	return nil
}

// requestAction posts a delivery request.
//
// - implements node.ActionTemplate
type requestAction struct{}

// Execute implements node.ActionTemplate.
func (requestAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	account := types.Account(ctx.Flags.String(accountFlag))

	id, err := parseDeliveryID(ctx.Flags)
	if err != nil {
		return err
	}

	fee, err := parseAmount(ctx.Flags, feeFlag)
	if err != nil {
		return err
	}

	err = ledger.RequestForDelivery(account, id, fee)
	if err != nil {
		return xerrors.Errorf("failed to request delivery: %v", err)
	}

	fmt.Fprintf(ctx.Out, "delivery %s requested", id)

	return nil
}

// stepAction moves a delivery to its next status on behalf of the caller.
//
// - implements node.ActionTemplate
type stepAction struct {
	name string
	fn   func(l *logistics.Ledger, caller types.Account, id types.DeliveryID) error
}

// Execute implements node.ActionTemplate.
func (a stepAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	account := types.Account(ctx.Flags.String(accountFlag))

	id, err := parseDeliveryID(ctx.Flags)
	if err != nil {
		return err
	}

	err = a.fn(ledger, account, id)
	if err != nil {
		return xerrors.Errorf("delivery not %s: %v", a.name, err)
	}

	fmt.Fprintf(ctx.Out, "delivery %s %s", id, a.name)

	return nil
}

// memberAction prints the record of a member.
//
// - implements node.ActionTemplate
type memberAction struct{}

// Execute implements node.ActionTemplate.
func (memberAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	member, err := ledger.GetMember(types.Account(ctx.Flags.String(accountFlag)))
	if err != nil {
		return xerrors.Errorf("failed to read member: %v", err)
	}

	fmt.Fprintf(ctx.Out, "account=%s balance=%s reputation=%d penalties=%d",
		member.Account, member.Balance, member.Reputation, member.Penalties)

	return nil
}

// deliveryAction prints the record of a delivery.
//
// - implements node.ActionTemplate
type deliveryAction struct{}

// Execute implements node.ActionTemplate.
func (deliveryAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	id, err := parseDeliveryID(ctx.Flags)
	if err != nil {
		return err
	}

	delivery, found, err := ledger.GetDelivery(id)
	if err != nil {
		return xerrors.Errorf("failed to read delivery: %v", err)
	}

	if !found {
		fmt.Fprintf(ctx.Out, "id=%s status=%v (unknown)", id, delivery.Status)
		return nil
	}

	fmt.Fprintf(ctx.Out, "id=%s status=%v requester=%s assistant=%s fee=%s",
		id, delivery.Status, delivery.Requester, delivery.AssistingMember, delivery.Fee)

	return nil
}

// reserveAction prints the funds held by the ledger.
//
// - implements node.ActionTemplate
type reserveAction struct{}

// Execute implements node.ActionTemplate.
func (reserveAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	reserve, err := ledger.GetReserve()
	if err != nil {
		return xerrors.Errorf("failed to read reserve: %v", err)
	}

	fmt.Fprintf(ctx.Out, "total=%s escrow=%s", reserve.Total, reserve.Escrow)

	return nil
}

// exposeAction registers the handlers of the ledger on the proxy.
//
// - implements node.ActionTemplate
type exposeAction struct{}

// Execute implements node.ActionTemplate.
func (exposeAction) Execute(ctx node.Context) error {
	ledger, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	var p proxy.Proxy

	err = ctx.Injector.Resolve(&p)
	if err != nil {
		return xerrors.Errorf("failed to resolve proxy: %v", err)
	}

	h := newHandlers(ledger)

	p.RegisterHandler(membersPath, h.member)
	p.RegisterHandler(deliveriesPath, h.delivery)
	p.RegisterHandler(reservePath, h.reserve)

	fmt.Fprintf(ctx.Out, "ledger exposed on %s", p.GetAddr())

	return nil
}

func resolveLedger(ctx node.Context) (*logistics.Ledger, error) {
	var ledger *logistics.Ledger

	err := ctx.Injector.Resolve(&ledger)
	if err != nil {
		return nil, xerrors.Errorf("failed to resolve ledger: %v", err)
	}

	return ledger, nil
}

func parseAmount(flags cli.Flags, name string) (types.Amount, error) {
	amount, err := types.ParseAmount(flags.String(name))
	if err != nil {
		return 0, xerrors.Errorf("failed to parse %s: %v", name, err)
	}

	return amount, nil
}

// parseDeliveryID returns the identifier from either the hex flag or the hash
// of the details.
func parseDeliveryID(flags cli.Flags) (types.DeliveryID, error) {
	hexID := flags.String(idFlag)
	details := flags.String(detailsFlag)

	switch {
	case hexID != "" && details != "":
		return types.DeliveryID{}, xerrors.Errorf("flags --%s and --%s are exclusive",
			idFlag, detailsFlag)
	case hexID != "":
		return types.ParseDeliveryID(hexID)
	case details != "":
		return types.HashDeliveryDetails(details), nil
	default:
		return types.DeliveryID{}, xerrors.Errorf("flag --%s or --%s is required",
			idFlag, detailsFlag)
	}
}
