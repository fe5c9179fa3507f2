package vdom

// LongestIncreasingSubsequence returns the indices of a longest strictly
// increasing subsequence of arr. Zero entries are skipped: in the keyed diff
// they mark nodes without an old counterpart.
//
// It keeps, for every length, the index of the smallest tail seen so far,
// places each value by binary search and links it to its predecessor, then
// walks the links back from the last tail. O(n log n).
func LongestIncreasingSubsequence(arr []int) []int {
	pred := make([]int, len(arr))
	tails := make([]int, 0, len(arr))

	for i, v := range arr {
		if v == 0 {
			continue
		}
		n := len(tails)
		if n == 0 || arr[tails[n-1]] < v {
			if n > 0 {
				pred[i] = tails[n-1]
			}
			tails = append(tails, i)
			continue
		}

		lo, hi := 0, n-1
		for lo < hi {
			mid := (lo + hi) / 2
			if arr[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[tails[lo]] {
			if lo > 0 {
				pred[i] = tails[lo-1]
			}
			tails[lo] = i
		}
	}

	n := len(tails)
	if n == 0 {
		return tails
	}
	last := tails[n-1]
	for k := n - 1; k >= 0; k-- {
		tails[k] = last
		last = pred[last]
	}
	return tails
}
