package node

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/courier"
	"go.dedis.ch/courier/cli"
	"go.dedis.ch/courier/cli/ucli"
	"golang.org/x/xerrors"
)

const (
	// AppName is the name of the application.
	AppName = "courier"

	// ConfigFlag is the name of the global flag of the configuration folder.
	ConfigFlag = "config"

	defaultConfig = ".courier"
)

// CLIBuilder is an application builder that will build a CLI to start and
// control a node.
//
// - implements node.Builder
// - implements cli.Builder
type CLIBuilder struct {
	cli.Builder

	daemonFactory DaemonFactory
	injector      Injector
	actions       *actionMap
	startFlags    []cli.Flag
	inits         []Initializer

	// The daemon stops on SIGINT or SIGTERM, unless a channel is provided, in
	// which case it stops when a value is received.
	enableSignal bool
	sigs         chan os.Signal
}

// NewBuilder returns a new builder with the initializers. They are started in
// the given order and stopped in the reverse order.
func NewBuilder(inits ...Initializer) *CLIBuilder {
	return NewBuilderWithCfg(nil, nil, inits...)
}

// NewBuilderWithCfg returns a new builder that stops on the signal channel
// and writes the output of the commands to out.
func NewBuilderWithCfg(sigs chan os.Signal, out io.Writer, inits ...Initializer) *CLIBuilder {
	if out == nil {
		out = os.Stdout
	}

	enabled := false

	if sigs == nil {
		sigs = make(chan os.Signal, 1)
		enabled = true
	}

	injector := NewInjector()
	actions := &actionMap{}

	builder := ucli.NewBuilder(AppName, "delivery brokering ledger", cli.StringFlag{
		Name:  ConfigFlag,
		Usage: "path to the config folder",
		Value: defaultConfig,
	})

	return &CLIBuilder{
		Builder:  builder,
		injector: injector,
		actions:  actions,
		daemonFactory: socketFactory{
			injector: injector,
			actions:  actions,
			out:      out,
		},
		enableSignal: enabled,
		sigs:         sigs,
		inits:        inits,
	}
}

// SetStartFlags implements node.Builder.
func (b *CLIBuilder) SetStartFlags(flags ...cli.Flag) {
	b.startFlags = append(b.startFlags, flags...)
}

// MakeAction implements node.Builder. The action sends the identifier of the
// template followed by the flags of the command to the daemon.
func (b *CLIBuilder) MakeAction(tmpl ActionTemplate) cli.Action {
	index := b.actions.Set(tmpl)

	return func(c cli.Flags) error {
		client, err := b.daemonFactory.ClientFromContext(c)
		if err != nil {
			return xerrors.Errorf("couldn't make client: %v", err)
		}

		id := make([]byte, 2)
		binary.LittleEndian.PutUint16(id, index)

		fset := make(FlagSet)

		ctx, ok := c.(*urfave.Context)
		if ok {
			lookupFlags(fset, ctx)
		}

		buf, err := json.Marshal(fset)
		if err != nil {
			return xerrors.Errorf("failed to marshal flag set: %v", err)
		}

		err = client.Send(append(id, buf...))
		if err != nil {
			return xerrors.Opaque(err)
		}

		return nil
	}
}

// lookupFlags collects the flags of the command and of its parents. The
// closest definition of a flag wins.
func lookupFlags(fset FlagSet, ctx *urfave.Context) {
	for _, ancestor := range ctx.Lineage() {
		if ancestor.Command != nil {
			fill(fset, ancestor.Command.Flags, ancestor)
		}

		if ancestor.App != nil {
			fill(fset, ancestor.App.Flags, ancestor)
		}
	}
}

func fill(fset FlagSet, flags []urfave.Flag, ctx *urfave.Context) {
	for _, flag := range flags {
		names := flag.Names()
		if len(names) == 0 {
			continue
		}

		name := names[0]

		_, found := fset[name]
		if found {
			continue
		}

		switch flag.(type) {
		case *urfave.BoolFlag:
			fset[name] = ctx.Bool(name)
		default:
			fset[name] = ctx.String(name)
		}
	}
}

// Build implements cli.Builder. It adds the commands of the initializers and
// the start command.
func (b *CLIBuilder) Build() cli.Application {
	for _, ctrl := range b.inits {
		ctrl.SetCommands(b)
	}

	cmd := b.SetCommand("start")
	cmd.SetDescription("start the node")
	cmd.SetFlags(b.startFlags...)
	cmd.SetAction(b.start)

	return b.Builder.Build()
}

func (b *CLIBuilder) start(flags cli.Flags) error {
	if b.enableSignal {
		signal.Notify(b.sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(b.sigs)
	}

	dir := flags.Path(ConfigFlag)
	if dir != "" {
		err := os.MkdirAll(dir, 0700)
		if err != nil {
			return xerrors.Errorf("couldn't make path: %v", err)
		}
	}

	daemon, err := b.daemonFactory.DaemonFromContext(flags)
	if err != nil {
		return xerrors.Errorf("couldn't make daemon: %v", err)
	}

	for _, ctrl := range b.inits {
		err = ctrl.OnStart(flags, b.injector)
		if err != nil {
			return xerrors.Errorf("couldn't run the controller: %v", err)
		}
	}

	// The daemon accepts commands once every component has started.
	err = daemon.Listen()
	if err != nil {
		return xerrors.Errorf("couldn't start the daemon: %v", err)
	}

	defer daemon.Close()

	courier.Logger.Info().Str("config", dir).Msg("node started")

	<-b.sigs

	// Higher level components stop before the ones they depend on, like the
	// ledger before the database.
	for i := len(b.inits) - 1; i >= 0; i-- {
		err = b.inits[i].OnStop(b.injector)
		if err != nil {
			return xerrors.Errorf("couldn't stop controller: %v", err)
		}
	}

	courier.Logger.Info().Msg("node stopped")

	return nil
}

// actionMap stores the templates and assigns a unique index to each.
type actionMap struct {
	list []ActionTemplate
}

func (m *actionMap) Set(a ActionTemplate) uint16 {
	m.list = append(m.list, a)
	return uint16(len(m.list) - 1)
}

func (m *actionMap) Get(index uint16) ActionTemplate {
	if int(index) >= len(m.list) {
		return nil
	}

	return m.list[index]
}
