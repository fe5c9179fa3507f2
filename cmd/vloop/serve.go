package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vloop/internal/config"
	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/server"
	"github.com/vango-dev/vloop/pkg/telemetry"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// recentTicks is how many ticks the served list keeps.
const recentTicks = 5

func serveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream a live component tree over WebSocket",
		Long: `Serve a counter and a keyed list of recent ticks to WebSocket
clients. Each connection gets its own runtime; state ticks on a timer
and on client clicks, and every flush is sent as one binary frame of
host operations.

Endpoints:
  /ws        WebSocket session
  /healthz   JSON health check
  /metrics   Prometheus metrics (path set by serve.metricsPath)

Examples:
  vloop serve
  vloop serve --addr=0.0.0.0:8080 --tick=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", c.cfg.Serve.Addr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printBanner(out)
			success(out, "Listening on http://%s", ln.Addr())
			info(out, "WebSocket  ws://%s/ws", ln.Addr())
			if c.cfg.Serve.MetricsPath != "" {
				info(out, "Metrics    http://%s%s", ln.Addr(), c.cfg.Serve.MetricsPath)
			}
			return newServer(c.cfg).Serve(ctx, ln)
		},
	}

	cmd.Flags().StringP("addr", "a", "", "Address to listen on (default from vloop.json)")
	cmd.Flags().String("metrics-path", "", "Path of the Prometheus handler")
	cmd.Flags().String("tick", "", "Interval between state changes, e.g. 500ms")
	c.bind("serve.addr", cmd.Flags().Lookup("addr"))
	c.bind("serve.metricsPath", cmd.Flags().Lookup("metrics-path"))
	c.bind("serve.tick", cmd.Flags().Lookup("tick"))

	return cmd
}

// newServer builds the server for cfg with metrics on their own registry.
func newServer(cfg *config.Config) *server.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sc := server.DefaultServerConfig()
	sc.Address = cfg.Serve.Addr
	sc.MetricsPath = cfg.Serve.MetricsPath
	sc.Gatherer = reg
	sc.Metrics = telemetry.NewMetrics(telemetry.WithRegistry(reg))
	sc.Tracer = telemetry.NewTracer()
	sc.SessionConfig.FlushLimit = cfg.Scheduler.FlushLimit

	return server.New(tickerApp(cfg.TickInterval()), sc)
}

// tickerApp renders a counter button and the last few ticks. The counter
// advances every tick and on every click.
func tickerApp(tick time.Duration) server.App {
	return func(ctx context.Context, s *server.Session) *vdom.VNode {
		rt := s.Runtime()
		count := reactive.NewSignal(rt, 0)
		ticks := reactive.NewSignal(rt, []int{})

		advance := func() {
			n := count.Peek() + 1
			count.Set(n)
			ticks.Update(func(l []int) []int {
				l = append(slices.Clone(l), n)
				if len(l) > recentTicks {
					l = l[len(l)-recentTicks:]
				}
				return l
			})
		}

		go func() {
			t := time.NewTicker(tick)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if err := s.Post(advance); err != nil {
						return
					}
				}
			}
		}()

		view := vdom.Func("Ticker", func(*vdom.Instance) *vdom.VNode {
			recent := ticks.Get()
			return vdom.Div(
				vdom.Button(vdom.On("click", advance), vdom.Textf("%d", count.Get())),
				vdom.Ul(vdom.Range(recent, func(n, _ int) *vdom.VNode {
					return vdom.Keyed(n, vdom.Li(vdom.Textf("tick %d", n)))
				})),
				vdom.If(len(recent) == 0, vdom.P(vdom.Content("waiting for the first tick"))),
			)
		})
		return vdom.C(view)
	}
}
