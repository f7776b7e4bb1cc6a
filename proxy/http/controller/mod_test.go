package controller

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/courier/cli/node"
)

func TestController_SetCommands(t *testing.T) {
	builder := node.NewBuilderWithCfg(make(chan os.Signal, 1), io.Discard, NewController())

	app := builder.Build().(*urfave.App)

	cmd := app.Command("proxy")
	require.NotNil(t, cmd)
	require.Len(t, cmd.Subcommands, 2)
	require.Equal(t, "start", cmd.Subcommands[0].Name)
	require.Equal(t, "prom", cmd.Subcommands[1].Name)
}

func TestController_OnStart(t *testing.T) {
	require.NoError(t, NewController().OnStart(node.FlagSet{}, node.NewInjector()))
}

func TestController_OnStop(t *testing.T) {
	inj := node.NewInjector()

	require.NoError(t, NewController().OnStop(inj))

	p := &fakeProxy{}
	inj.Inject(p)

	require.NoError(t, NewController().OnStop(inj))
	require.True(t, p.stopped)
}
