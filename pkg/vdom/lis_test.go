package vdom

import (
	"reflect"
	"testing"
)

func TestLongestIncreasingSubsequence(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty", nil, []int{}},
		{"all zero", []int{0, 0}, []int{}},
		{"sorted", []int{1, 2, 3}, []int{0, 1, 2}},
		{"reversed", []int{3, 2, 1}, []int{2}},
		{"swap", []int{3, 2}, []int{1}},
		{"mixed", []int{5, 3, 4, 8, 6, 7}, []int{1, 2, 4, 5}},
		{"zeros skipped", []int{2, 0, 3, 0, 1}, []int{0, 2}},
		{"duplicates not increasing", []int{2, 2, 2}, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LongestIncreasingSubsequence(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LongestIncreasingSubsequence(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func BenchmarkLongestIncreasingSubsequence(b *testing.B) {
	arr := make([]int, 1000)
	for i := range arr {
		arr[i] = (i*7919)%1000 + 1
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LongestIncreasingSubsequence(arr)
	}
}
