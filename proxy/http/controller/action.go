package controller

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.dedis.ch/courier"
	"go.dedis.ch/courier/cli/node"
	"go.dedis.ch/courier/proxy"
	"go.dedis.ch/courier/proxy/http"
	"golang.org/x/xerrors"
)

var (
	startRetries  = 50
	retryInterval = 100 * time.Millisecond

	proxyFac = func(addr string) proxy.Proxy {
		return http.NewHTTP(addr)
	}

	registerer prometheus.Registerer = prometheus.DefaultRegisterer
)

// startAction starts the proxy and injects it.
//
// - implements node.ActionTemplate
type startAction struct{}

// Execute implements node.ActionTemplate.
func (startAction) Execute(ctx node.Context) error {
	var existing proxy.Proxy

	err := ctx.Injector.Resolve(&existing)
	if err == nil && existing.GetAddr() != nil {
		return xerrors.Errorf("proxy already running on %s", existing.GetAddr())
	}

	p := proxyFac(ctx.Flags.String("clientaddr"))

	go p.Listen()

	for i := 0; i < startRetries && p.GetAddr() == nil; i++ {
		time.Sleep(retryInterval)
	}

	if p.GetAddr() == nil {
		return xerrors.New("failed to start proxy server")
	}

	ctx.Injector.Inject(p)

	fmt.Fprintf(ctx.Out, "started proxy server on %s", p.GetAddr())

	return nil
}

// promAction registers the collectors of the node and serves them on the
// proxy.
//
// - implements node.ActionTemplate
type promAction struct{}

// Execute implements node.ActionTemplate.
func (promAction) Execute(ctx node.Context) error {
	var p proxy.Proxy

	err := ctx.Injector.Resolve(&p)
	if err != nil {
		return xerrors.Errorf("failed to resolve the proxy: %v", err)
	}

	for _, c := range courier.PromCollectors {
		err = registerer.Register(c)
		if err != nil {
			ctx.Logger.Warn().Err(err).Msg("failed to register collector")
		}
	}

	path := ctx.Flags.String("path")

	p.RegisterHandler(path, promhttp.Handler().ServeHTTP)

	fmt.Fprintf(ctx.Out, "registered prometheus service on %q", path)

	return nil
}
