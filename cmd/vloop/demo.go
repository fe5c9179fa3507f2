package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vloop/internal/config"
	verrors "github.com/vango-dev/vloop/internal/errors"
	"github.com/vango-dev/vloop/internal/watch"
	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/vdom"
	"github.com/vango-dev/vloop/pkg/vtest"
)

func demoCmd(c *cli) *cobra.Command {
	var watchFile string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a keyed todo list on a headless host",
		Long: `Mount a keyed todo list on an in-memory host and apply scripted
mutations to its observed state: append, remove, swap and rename.
Every flush prints the host operations it produced; the final tree
is printed at the end.

With --watch the list is read from a YAML file and re-rendered each
time the file changes, until interrupted:

  title: groceries
  items:
    - {id: 1, text: milk}
    - {id: 2, text: eggs, done: true}

Examples:
  vloop demo
  vloop demo --items=10 --steps=8
  vloop demo --watch=todos.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDemo(ctx, cmd.OutOrStdout(), c.cfg, watchFile)
		},
	}

	cmd.Flags().Int("items", 0, "Initial list length (default from vloop.json)")
	cmd.Flags().Int("steps", 0, "Number of scripted mutations (default from vloop.json)")
	cmd.Flags().StringVarP(&watchFile, "watch", "w", "", "Drive the list from a YAML state file")
	c.bind("demo.items", cmd.Flags().Lookup("items"))
	c.bind("demo.steps", cmd.Flags().Lookup("steps"))

	return cmd
}

// todo is one list entry. IDs are the list keys.
type todo struct {
	ID   int    `yaml:"id"`
	Text string `yaml:"text"`
	Done bool   `yaml:"done"`
}

// todoState is the observed state of the demo.
type todoState struct {
	Title string `vloop:"title" yaml:"title"`
	Items []todo `vloop:"items" yaml:"items"`
}

// todoList renders state as a heading and a keyed list, with a note when
// the list is empty.
func todoList(state *reactive.Object) *vdom.FuncComponent {
	return vdom.Func("TodoList", func(*vdom.Instance) *vdom.VNode {
		items := reactive.GetAs[[]todo](state, "items")
		return vdom.Div(
			vdom.H1(vdom.Content(reactive.GetAs[string](state, "title"))),
			vdom.Ul(vdom.Range(items, func(it todo, _ int) *vdom.VNode {
				var done any
				if it.Done {
					done = vdom.Class("done")
				}
				return vdom.Keyed(it.ID, vdom.Li(done, vdom.Content(it.Text)))
			})),
			vdom.When(len(items) == 0, func() *vdom.VNode {
				return vdom.P(vdom.Class("empty"), vdom.Content("nothing to do"))
			}),
		)
	})
}

func seedTodos(n int) []todo {
	items := make([]todo, n)
	for i := range items {
		items[i] = todo{ID: i + 1, Text: fmt.Sprintf("item %d", i+1)}
	}
	return items
}

// mutate applies scripted step n to items and returns the new list.
// nextID allocates keys for appended entries.
func mutate(items []todo, n int, nextID func() int) []todo {
	items = slices.Clone(items)
	switch n % 4 {
	case 0:
		id := nextID()
		items = append(items, todo{ID: id, Text: fmt.Sprintf("item %d", id)})
	case 1:
		if len(items) > 0 {
			items = items[1:]
		}
	case 2:
		if len(items) > 1 {
			last := len(items) - 1
			items[0], items[last] = items[last], items[0]
		}
	case 3:
		if len(items) > 0 {
			mid := len(items) / 2
			items[mid].Text += " (edited)"
			items[mid].Done = !items[mid].Done
		}
	}
	return items
}

// demo owns the runtime, host and loop of one demo run. Everything except
// Post runs on the loop goroutine.
type demo struct {
	out    io.Writer
	logger *slog.Logger

	host   *vtest.Host
	root   *vtest.Node
	r      *vdom.Renderer
	state  *reactive.Object
	loop   *reactive.Loop
	nextID int
	flush  int
}

func newDemo(out io.Writer, cfg *config.Config, initial *todoState) *demo {
	rt := reactive.NewRuntime(reactive.WithFlushLimit(cfg.Scheduler.FlushLimit))
	d := &demo{
		out:    out,
		logger: slog.Default().With("component", "demo"),
		host:   vtest.NewHost(),
		state:  reactive.MustObserve(rt, initial),
		loop:   reactive.NewLoop(rt, 16),
	}
	for _, it := range initial.Items {
		d.nextID = max(d.nextID, it.ID)
	}
	d.root = d.host.NewContainer()
	d.r = vdom.NewRenderer(rt, d.host)
	d.loop.AfterTask(d.printOps)
	return d
}

// printOps prints the operations of the flush that just completed.
func (d *demo) printOps() {
	ops := d.host.Ops()
	if len(ops) == 0 {
		return
	}
	d.flush++
	fmt.Fprintf(d.out, "flush %d: %d ops\n", d.flush, len(ops))
	for _, op := range ops {
		fmt.Fprintf(d.out, "  %s\n", op)
	}
	d.host.Reset()
}

func (d *demo) mount() {
	d.r.Render(vdom.C(todoList(d.state)), d.root)
}

func (d *demo) step(n int) {
	items := reactive.GetAs[[]todo](d.state, "items")
	next := mutate(items, n, func() int {
		d.nextID++
		return d.nextID
	})
	if err := d.state.Set("items", next); err != nil {
		d.logger.Error("step failed", "step", n, "error", err)
	}
}

// apply replaces the whole state, as read from a state file.
func (d *demo) apply(s *todoState) {
	for key, value := range map[string]any{"title": s.Title, "items": s.Items} {
		if err := d.state.Set(key, value); err != nil {
			d.logger.Error("state update failed", "key", key, "error", err)
		}
	}
}

func runDemo(ctx context.Context, out io.Writer, cfg *config.Config, watchFile string) error {
	initial := &todoState{Title: "todos", Items: seedTodos(cfg.Demo.Items)}
	if watchFile != "" {
		s, err := readTodoFile(watchFile)
		if err != nil {
			return err
		}
		initial = s
	}

	d := newDemo(out, cfg, initial)
	loopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loopDone := make(chan error, 1)
	go func() { loopDone <- d.loop.Run(loopCtx) }()

	post := func(fn func()) error { return d.loop.Post(loopCtx, fn) }
	if err := post(d.mount); err != nil {
		return err
	}

	if watchFile != "" {
		if err := d.watch(ctx, watchFile, post); err != nil {
			return err
		}
	} else {
		for i := 0; i < cfg.Demo.Steps; i++ {
			n := i
			if err := post(func() { d.step(n) }); err != nil {
				return err
			}
		}
	}

	err := post(func() {
		fmt.Fprintf(out, "\n%s\n", vtest.Serialize(d.root))
		d.r.Render(nil, d.root)
		d.host.Reset()
		d.loop.Close()
	})
	if err != nil {
		return err
	}
	return <-loopDone
}

// watch feeds every change of path into the loop until ctx is done. An
// unreadable file is logged and skipped; the previous state stays.
func (d *demo) watch(ctx context.Context, path string, post func(func()) error) error {
	w, err := watch.New(0)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return err
	}
	d.logger.Info("watching state file", "path", path)

	err = w.Run(ctx, func(path string) {
		s, err := readTodoFile(path)
		if err != nil {
			d.logger.Error("state file skipped", verrors.FromError(err, "E550").LogAttrs()...)
			return
		}
		if err := post(func() { d.apply(s) }); err != nil {
			d.logger.Debug("state change dropped", "error", err)
		}
	})
	if err == context.Canceled || err == context.DeadlineExceeded {
		return nil
	}
	return err
}

func readTodoFile(path string) (*todoState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, verrors.New("E550").WithField("path", path).Wrap(err)
	}
	s := &todoState{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, verrors.New("E550").WithField("path", path).Wrap(err)
	}
	if s.Items == nil {
		s.Items = []todo{}
	}
	return s, nil
}
