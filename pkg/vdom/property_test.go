//go:build property
// +build property

package vdom_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vango-dev/vloop/pkg/vdom"
	"github.com/vango-dev/vloop/pkg/vtest"
)

// lisLength is the quadratic reference: longest strictly increasing run of
// non-zero values.
func lisLength(arr []int) int {
	best := 0
	dp := make([]int, len(arr))
	for i, v := range arr {
		if v == 0 {
			continue
		}
		dp[i] = 1
		for j := 0; j < i; j++ {
			if arr[j] != 0 && arr[j] < v && dp[j]+1 > dp[i] {
				dp[i] = dp[j] + 1
			}
		}
		best = max(best, dp[i])
	}
	return best
}

func unique(keys []int) []int {
	seen := make(map[int]bool, len(keys))
	out := keys[:0:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func TestLISProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("matches quadratic reference", prop.ForAll(
		func(arr []int) bool {
			got := vdom.LongestIncreasingSubsequence(arr)
			if len(got) != lisLength(arr) {
				return false
			}
			for i, idx := range got {
				if arr[idx] == 0 {
					return false
				}
				if i > 0 && (idx <= got[i-1] || arr[idx] <= arr[got[i-1]]) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.TestingRun(t)
}

func TestKeyedReconcileProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("converges with minimal moves", prop.ForAll(
		func(from, to []int) bool {
			from, to = unique(from), unique(to)

			f := newFixture()
			f.render(keyedList(from...))
			f.r.Render(keyedList(to...), f.root)

			if vtest.Serialize(f.root) != listMarkup(to...) {
				return false
			}

			oldIndex := make(map[int]int, len(from))
			for i, k := range from {
				oldIndex[k] = i + 1
			}
			var order []int
			added := 0
			for _, k := range to {
				if i, ok := oldIndex[k]; ok {
					order = append(order, i)
				} else {
					added++
				}
			}
			removed := len(from) - len(order)

			return f.host.Count(vtest.OpMove) == len(order)-lisLength(order) &&
				f.host.Count(vtest.OpCreateElement) == added &&
				f.host.Count(vtest.OpRemove) == removed
		},
		gen.SliceOf(gen.IntRange(0, 25)),
		gen.SliceOf(gen.IntRange(0, 25)),
	))

	properties.TestingRun(t)
}
