package iterutil

import (
	"iter"
)

// Chunks yields consecutive slices of s holding at most size elements each,
// paired with their zero-based position. The last chunk may be shorter.
// Chunks panics if size is less than 1.
func Chunks[Slice ~[]E, E any](s Slice, size int) iter.Seq2[int, Slice] {
	if size < 1 {
		panic("iterutil: chunk size must be positive")
	}
	return func(yield func(int, Slice) bool) {
		for i, start := 0, 0; start < len(s); i, start = i+1, start+size {
			end := min(start+size, len(s))
			if !yield(i, s[start:end:end]) {
				return
			}
		}
	}
}
