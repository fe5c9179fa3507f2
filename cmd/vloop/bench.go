package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/vdom"
	"github.com/vango-dev/vloop/pkg/vtest"
)

// benchRound is the outcome of one shuffle.
type benchRound struct {
	Ops      int
	Moves    int
	MinMoves int
	Elapsed  time.Duration
}

func benchCmd(c *cli) *cobra.Command {
	var (
		size   int
		rounds int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure keyed list reconciliation",
		Long: `Render a keyed list, then shuffle it repeatedly and report, per
round, the host operations issued, the moves among them and the
fewest moves any reorder could make (size minus the longest run of
keys that kept their relative order).

Examples:
  vloop bench
  vloop bench --size=1000 --rounds=20 --seed=7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 1 || rounds < 1 {
				return fmt.Errorf("size and rounds must be positive")
			}
			results := runBench(size, rounds, seed, c.cfg.Scheduler.FlushLimit)
			printBench(cmd.OutOrStdout(), size, results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 100, "List length")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 10, "Number of shuffles")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Shuffle seed")

	return cmd
}

func keyedList(keys []int) *vdom.VNode {
	return vdom.Ul(vdom.Range(keys, func(k, _ int) *vdom.VNode {
		return vdom.Li(vdom.Key(k), vdom.Content(fmt.Sprint(k)))
	}))
}

// minMoves returns how many entries of next must move to turn prev into
// next: all but the longest subsequence already in order.
func minMoves(prev, next []int) int {
	pos := make(map[int]int, len(prev))
	for i, k := range prev {
		pos[k] = i + 1
	}
	seq := make([]int, len(next))
	for i, k := range next {
		seq[i] = pos[k]
	}
	return len(next) - len(vdom.LongestIncreasingSubsequence(seq))
}

func runBench(size, rounds int, seed uint64, flushLimit int) []benchRound {
	rng := rand.New(rand.NewPCG(seed, seed))
	rt := reactive.NewRuntime(reactive.WithFlushLimit(flushLimit))
	host := vtest.NewHost()
	root := host.NewContainer()
	r := vdom.NewRenderer(rt, host)

	keys := make([]int, size)
	for i := range keys {
		keys[i] = i
	}
	r.Render(keyedList(keys), root)

	results := make([]benchRound, 0, rounds)
	for i := 0; i < rounds; i++ {
		next := append([]int(nil), keys...)
		rng.Shuffle(len(next), func(a, b int) { next[a], next[b] = next[b], next[a] })

		host.Reset()
		start := time.Now()
		r.Render(keyedList(next), root)
		results = append(results, benchRound{
			Ops:      len(host.Ops()),
			Moves:    host.Count(vtest.OpMove),
			MinMoves: minMoves(keys, next),
			Elapsed:  time.Since(start),
		})
		keys = next
	}
	r.Render(nil, root)
	return results
}

func printBench(w io.Writer, size int, results []benchRound) {
	fmt.Fprintf(w, "keyed shuffle, %d items\n\n", size)
	fmt.Fprintf(w, "  %5s  %6s  %6s  %9s  %10s\n", "round", "ops", "moves", "min moves", "time")
	var total time.Duration
	for i, res := range results {
		total += res.Elapsed
		fmt.Fprintf(w, "  %5d  %6d  %6d  %9d  %10s\n", i+1, res.Ops, res.Moves, res.MinMoves, res.Elapsed.Round(time.Microsecond))
	}
	if len(results) > 0 {
		fmt.Fprintf(w, "\n  mean %s per round\n", (total / time.Duration(len(results))).Round(time.Microsecond))
	}
}
