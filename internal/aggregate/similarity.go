package aggregate

import "strings"

// comparePrefix bounds how much normalized content feeds the pairwise
// similarity scan. Blog posts that agree on their first 500 characters are
// syndicated copies for our purposes, and the bound keeps the O(n²) scan
// cheap.
const comparePrefix = 500

// similarity returns a longest-common-subsequence ratio in [0,1] over
// whitespace-normalized, lower-cased text: 2*lcs/(len(a)+len(b)). Identical
// inputs score 1.
func similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest common subsequence length with a two-row
// dynamic program.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// normalize lower-cases, collapses whitespace, and truncates to the
// comparison prefix.
func normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	runes := []rune(s)
	if len(runes) > comparePrefix {
		return string(runes[:comparePrefix])
	}
	return s
}
