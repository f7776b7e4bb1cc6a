package controller

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/courier/cli/node"
	"go.dedis.ch/courier/contracts/logistics"
	"go.dedis.ch/courier/contracts/logistics/types"
	"go.dedis.ch/courier/core/store/kv"
)

func TestController_SetCommands(t *testing.T) {
	builder := node.NewBuilderWithCfg(make(chan os.Signal, 1), io.Discard, NewController())

	app := builder.Build().(*urfave.App)

	cmd := app.Command("logistics")
	require.NotNil(t, cmd)

	names := make([]string, len(cmd.Subcommands))
	for i, sub := range cmd.Subcommands {
		names[i] = sub.Name
	}

	require.Equal(t, []string{
		"register", "withdraw", "request", "respond", "complete", "confirm",
		"cancel", "member", "delivery", "reserve", "expose",
	}, names)

	start := app.Command("start")
	require.NotNil(t, start)

	flags := []string{}
	for _, flag := range start.Flags {
		flags = append(flags, flag.Names()[0])
	}

	require.Contains(t, flags, paramsFlag)
	require.Contains(t, flags, inMemoryFlag)
}

func TestController_OnStart_InMemory(t *testing.T) {
	inj := node.NewInjector()

	err := NewController().OnStart(node.FlagSet{inMemoryFlag: true}, inj)
	require.NoError(t, err)

	var ledger *logistics.Ledger
	require.NoError(t, inj.Resolve(&ledger))
	require.Equal(t, logistics.DefaultParams(), ledger.Params())
}

func TestController_OnStart_Database(t *testing.T) {
	db, err := kv.New(filepath.Join(t.TempDir(), "courier.db"))
	require.NoError(t, err)

	defer db.Close()

	params := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(params, []byte(`registrationFee: "2"`), 0600))

	inj := node.NewInjector()
	inj.Inject(db)

	err = NewController().OnStart(node.FlagSet{paramsFlag: params}, inj)
	require.NoError(t, err)

	var ledger *logistics.Ledger
	require.NoError(t, inj.Resolve(&ledger))
	require.Equal(t, types.Coins(2), ledger.Params().RegistrationFee)

	require.NoError(t, ledger.Register("user1", types.Coins(2)))

	// The ledger of the next start reads the same bucket.
	inj = node.NewInjector()
	inj.Inject(db)

	err = NewController().OnStart(node.FlagSet{}, inj)
	require.NoError(t, err)
	require.NoError(t, inj.Resolve(&ledger))

	member, err := ledger.GetMember("user1")
	require.NoError(t, err)
	require.Equal(t, types.Coins(2), member.Balance)
}

func TestController_OnStart_Failures(t *testing.T) {
	err := NewController().OnStart(node.FlagSet{}, node.NewInjector())
	require.EqualError(t, err,
		"failed to resolve database: couldn't find dependency for 'kv.DB'")

	missing := filepath.Join(t.TempDir(), "missing.yaml")

	err = NewController().OnStart(node.FlagSet{
		inMemoryFlag: true,
		paramsFlag:   missing,
	}, node.NewInjector())
	require.Error(t, err)
	require.Regexp(t, "^failed to read params: ", err.Error())
}

func TestController_OnStop(t *testing.T) {
	require.NoError(t, NewController().OnStop(node.NewInjector()))
}
