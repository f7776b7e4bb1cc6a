// Package controller implements the initializer of the logistics ledger. It
// creates the ledger when the node starts and sets the commands that operate
// on it.
package controller

import (
	"go.dedis.ch/courier/cli"
	"go.dedis.ch/courier/cli/node"
	"go.dedis.ch/courier/contracts/logistics"
	"go.dedis.ch/courier/core/store"
	"go.dedis.ch/courier/core/store/kv"
	"go.dedis.ch/courier/core/store/mem"
	"golang.org/x/xerrors"
)

// BucketName is the bucket of the database where the ledger is stored.
const BucketName = "logistics"

const (
	paramsFlag   = "params"
	inMemoryFlag = "inmemory"
	accountFlag  = "account"
	amountFlag   = "amount"
	feeFlag      = "fee"
	idFlag       = "id"
	detailsFlag  = "details"
)

// NewController returns the initializer of the ledger.
func NewController() node.Initializer {
	return controller{}
}

// controller is the initializer of the ledger.
//
// - implements node.Initializer
type controller struct{}

// SetCommands implements node.Initializer.
func (controller) SetCommands(builder node.Builder) {
	builder.SetStartFlags(
		cli.StringFlag{
			Name:  paramsFlag,
			Usage: "path to the YAML file of the ledger params",
		},
		cli.BoolFlag{
			Name:  inMemoryFlag,
			Usage: "keep the ledger in memory instead of the database",
		},
	)

	account := cli.StringFlag{
		Name:     accountFlag,
		Usage:    "account of the caller",
		Required: true,
	}

	delivery := []cli.Flag{
		cli.StringFlag{
			Name:  idFlag,
			Usage: "hex identifier of the delivery",
		},
		cli.StringFlag{
			Name:  detailsFlag,
			Usage: "details of the delivery, hashed into its identifier",
		},
	}

	cmd := builder.SetCommand("logistics")
	cmd.SetDescription("operate the delivery ledger")

	sub := cmd.SetSubCommand("register")
	sub.SetDescription("register a member, or top up its balance")
	sub.SetFlags(account, cli.StringFlag{
		Name:     amountFlag,
		Usage:    "deposit in coins",
		Required: true,
	})
	sub.SetAction(builder.MakeAction(registerAction{}))

	sub = cmd.SetSubCommand("withdraw")
	sub.SetDescription("withdraw from the balance of a member")
	sub.SetFlags(account, cli.StringFlag{
		Name:     amountFlag,
		Usage:    "amount in coins",
		Required: true,
	})
	sub.SetAction(builder.MakeAction(withdrawAction{}))

	sub = cmd.SetSubCommand("request")
	sub.SetDescription("post a delivery request")
	sub.SetFlags(account, cli.StringFlag{
		Name:     feeFlag,
		Usage:    "fee in coins held in escrow",
		Required: true,
	})
	sub.SetFlags(delivery...)
	sub.SetAction(builder.MakeAction(requestAction{}))

	steps := []struct {
		name        string
		description string
		action      stepAction
	}{
		{"respond", "accept a pending delivery request", stepAction{
			name: "accepted",
			fn:   (*logistics.Ledger).RespondToDeliveryRequest,
		}},
		{"complete", "mark an accepted delivery as completed", stepAction{
			name: "completed",
			fn:   (*logistics.Ledger).MarkDeliveryAsCompleted,
		}},
		{"confirm", "confirm a completed delivery and pay the fee", stepAction{
			name: "confirmed",
			fn:   (*logistics.Ledger).MarkDeliveryAsConfirmed,
		}},
		{"cancel", "cancel an accepted delivery and return the fee", stepAction{
			name: "cancelled",
			fn:   (*logistics.Ledger).MarkDeliveryAsCancelled,
		}},
	}

	for _, step := range steps {
		sub = cmd.SetSubCommand(step.name)
		sub.SetDescription(step.description)
		sub.SetFlags(account)
		sub.SetFlags(delivery...)
		sub.SetAction(builder.MakeAction(step.action))
	}

	sub = cmd.SetSubCommand("member")
	sub.SetDescription("show the record of a member")
	sub.SetFlags(cli.StringFlag{
		Name:     accountFlag,
		Usage:    "account of the member",
		Required: true,
	})
	sub.SetAction(builder.MakeAction(memberAction{}))

	sub = cmd.SetSubCommand("delivery")
	sub.SetDescription("show the record of a delivery")
	sub.SetFlags(delivery...)
	sub.SetAction(builder.MakeAction(deliveryAction{}))

	sub = cmd.SetSubCommand("reserve")
	sub.SetDescription("show the funds held by the ledger")
	sub.SetAction(builder.MakeAction(reserveAction{}))

	sub = cmd.SetSubCommand("expose")
	sub.SetDescription("serve the records on the http proxy")
	sub.SetAction(builder.MakeAction(exposeAction{}))
}

// OnStart implements node.Initializer. It creates the ledger on the database,
// or in memory, and injects it.
func (controller) OnStart(flags cli.Flags, inj node.Injector) error {
	var s store.Store

	if flags.Bool(inMemoryFlag) {
		s = mem.NewStore()
	} else {
		var db kv.DB
		err := inj.Resolve(&db)
		if err != nil {
			return xerrors.Errorf("failed to resolve database: %v", err)
		}

		s = kv.NewStore(db, []byte(BucketName))
	}

	params := logistics.DefaultParams()

	path := flags.Path(paramsFlag)
	if path != "" {
		var err error
		params, err = logistics.LoadParams(path)
		if err != nil {
			return err
		}
	}

	ledger, err := logistics.NewLedger(s, logistics.WithParams(params))
	if err != nil {
		return xerrors.Errorf("failed to create ledger: %v", err)
	}

	inj.Inject(ledger)

	return nil
}

// OnStop implements node.Initializer. The ledger has nothing to release as
// the database is closed by its own initializer.
func (controller) OnStop(node.Injector) error {
	return nil
}
