package matching

import (
	"strings"

	"github.com/gosimple/slug"
)

// minContainmentLen keeps one or two letter fragments from matching every
// client whose name happens to contain them.
const minContainmentLen = 3

// NormalizeName folds a display name or memo fragment into bank memo form:
// ASCII, upper case, no separators. "Nguyễn Văn Á" becomes "NGUYENVANA".
func NormalizeName(s string) string {
	return strings.ToUpper(strings.ReplaceAll(slug.Make(s), "-", ""))
}

// NameMatches reports whether a memo name refers to a client. Containment in
// either direction is a match; otherwise the edit-distance similarity must
// reach minSimilarity (0 disables the fallback).
func NameMatches(memoName, clientName string, minSimilarity float64) (bool, float64) {
	if memoName == "" || clientName == "" {
		return false, 0
	}
	if memoName == clientName {
		return true, 1
	}

	shorter := min(len(memoName), len(clientName))
	if shorter >= minContainmentLen &&
		(strings.Contains(memoName, clientName) || strings.Contains(clientName, memoName)) {
		return true, 1
	}

	sim := similarity(memoName, clientName)
	return minSimilarity > 0 && sim >= minSimilarity, sim
}

func similarity(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
