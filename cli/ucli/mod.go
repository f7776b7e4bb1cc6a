// Package ucli implements the command line builder with the urfave/cli
// library.
package ucli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/courier/cli"
)

// Builder builds an urfave application.
//
// - implements cli.Builder
type Builder struct {
	name     string
	usage    string
	flags    []cli.Flag
	commands []*cmdBuilder
}

// NewBuilder returns a new builder of an application with the given name. The
// flags are global and therefore available to every command.
func NewBuilder(name, usage string, flags ...cli.Flag) *Builder {
	return &Builder{
		name:  name,
		usage: usage,
		flags: flags,
	}
}

// SetCommand implements cli.Builder.
func (b *Builder) SetCommand(name string) cli.CommandBuilder {
	cmd := &cmdBuilder{name: name}
	b.commands = append(b.commands, cmd)

	return cmd
}

// Build implements cli.Builder. The application is set up so that it can be
// inspected before it runs.
func (b *Builder) Build() cli.Application {
	app := &urfave.App{
		Name:     b.name,
		Usage:    b.usage,
		Flags:    buildFlags(b.flags),
		Commands: buildCommands(b.commands),
	}

	app.Setup()

	return app
}

// cmdBuilder collects the properties of a command until the application is
// built.
//
// - implements cli.CommandBuilder
type cmdBuilder struct {
	name        string
	description string
	action      cli.Action
	flags       []cli.Flag
	subcommands []*cmdBuilder
}

// SetDescription implements cli.CommandBuilder.
func (b *cmdBuilder) SetDescription(value string) {
	b.description = value
}

// SetFlags implements cli.CommandBuilder. It appends the flags to the existing
// ones.
func (b *cmdBuilder) SetFlags(flags ...cli.Flag) {
	b.flags = append(b.flags, flags...)
}

// SetAction implements cli.CommandBuilder.
func (b *cmdBuilder) SetAction(action cli.Action) {
	b.action = action
}

// SetSubCommand implements cli.CommandBuilder.
func (b *cmdBuilder) SetSubCommand(name string) cli.CommandBuilder {
	sub := &cmdBuilder{name: name}
	b.subcommands = append(b.subcommands, sub)

	return sub
}

func buildCommands(cmds []*cmdBuilder) []*urfave.Command {
	commands := make([]*urfave.Command, len(cmds))

	for i, cmd := range cmds {
		commands[i] = &urfave.Command{
			Name:        cmd.name,
			Usage:       cmd.description,
			Flags:       buildFlags(cmd.flags),
			Action:      makeAction(cmd.action),
			Subcommands: buildCommands(cmd.subcommands),
		}
	}

	return commands
}

// buildFlags converts the definitions into urfave flags. It panics on a type
// it does not know as it is a programming error.
func buildFlags(flags []cli.Flag) []urfave.Flag {
	res := make([]urfave.Flag, len(flags))

	for i, f := range flags {
		switch e := f.(type) {
		case cli.StringFlag:
			res[i] = &urfave.StringFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
			}
		case cli.BoolFlag:
			res[i] = &urfave.BoolFlag{
				Name:  e.Name,
				Usage: e.Usage,
			}
		default:
			panic(fmt.Sprintf("flag type '%T' not supported", f))
		}
	}

	return res
}

func makeAction(action cli.Action) urfave.ActionFunc {
	if action == nil {
		return nil
	}

	return func(ctx *urfave.Context) error {
		return action(ctx)
	}
}
