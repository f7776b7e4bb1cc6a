// Package controller implements the initializer of the HTTP proxy. The proxy
// is started on demand by a command once the node is running.
package controller

import (
	"go.dedis.ch/courier/cli"
	"go.dedis.ch/courier/cli/node"
	"go.dedis.ch/courier/proxy"
)

const (
	defaultAddr = "127.0.0.1:8080"
	defaultProm = "/metrics"
)

// NewController returns the initializer of the proxy.
func NewController() node.Initializer {
	return controller{}
}

// controller sets the commands of the proxy and stops it with the node.
//
// - implements node.Initializer
type controller struct{}

// SetCommands implements node.Initializer.
func (controller) SetCommands(builder node.Builder) {
	cmd := builder.SetCommand("proxy")
	cmd.SetDescription("manage the http proxy")

	sub := cmd.SetSubCommand("start")
	sub.SetDescription("start the http proxy")
	sub.SetFlags(cli.StringFlag{
		Name:  "clientaddr",
		Usage: "the address of the http proxy",
		Value: defaultAddr,
	})
	sub.SetAction(builder.MakeAction(startAction{}))

	sub = cmd.SetSubCommand("prom")
	sub.SetDescription("register the collectors and serve them to prometheus")
	sub.SetFlags(cli.StringFlag{
		Name:  "path",
		Usage: "the path of the handler",
		Value: defaultProm,
	})
	sub.SetAction(builder.MakeAction(promAction{}))
}

// OnStart implements node.Initializer. The proxy is only started by its
// command.
func (controller) OnStart(cli.Flags, node.Injector) error {
	return nil
}

// OnStop implements node.Initializer. It stops the proxy if it has been
// started.
func (controller) OnStop(inj node.Injector) error {
	var p proxy.Proxy

	err := inj.Resolve(&p)
	if err == nil {
		p.Stop()
	}

	return nil
}
