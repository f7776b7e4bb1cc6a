// Package main implements the courier node. The node keeps the delivery
// ledger and is controlled by the commands of the same binary.
//
//	courier --config /tmp/node start --params params.yaml
//	courier --config /tmp/node logistics register --account alice --amount 10
//	courier --config /tmp/node logistics request --account alice \
//	  --details "parcel from A to B" --fee 0.5
//	courier --config /tmp/node proxy start --clientaddr 127.0.0.1:8080
//	courier --config /tmp/node logistics expose
package main

import (
	"fmt"
	"io"
	"os"

	"go.dedis.ch/courier/cli/node"
	logistics "go.dedis.ch/courier/contracts/logistics/controller"
	db "go.dedis.ch/courier/core/store/kv/controller"
	proxy "go.dedis.ch/courier/proxy/http/controller"
)

func main() {
	err := run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return runWithCfg(args, config{Writer: os.Stdout})
}

type config struct {
	Channel chan os.Signal
	Writer  io.Writer
}

func runWithCfg(args []string, cfg config) error {
	builder := node.NewBuilderWithCfg(
		cfg.Channel,
		cfg.Writer,
		db.NewMinimal(),
		proxy.NewController(),
		logistics.NewController(),
	)

	app := builder.Build()

	return app.Run(args)
}
