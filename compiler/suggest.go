package compiler

import (
	"sort"
	"strings"
)

// maxSuggestions is the number of candidates named in a hint.
const maxSuggestions = 3

type suggestion struct {
	name     string
	distance int
}

// suggest returns a hint naming the candidates closest to target, or an
// empty string when none is close enough. Short names tolerate fewer edits.
func suggest(target string, candidates []string) string {
	threshold := 3
	switch {
	case len(target) <= 3:
		threshold = 1
	case len(target) <= 5:
		threshold = 2
	}
	var found []suggestion
	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		d := levenshtein(strings.ToLower(target), strings.ToLower(candidate))
		if d <= threshold {
			found = append(found, suggestion{candidate, d})
		}
	}
	if len(found) == 0 {
		return ""
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].name < found[j].name
	})
	if len(found) > maxSuggestions {
		found = found[:maxSuggestions]
	}
	quoted := make([]string, len(found))
	for i, s := range found {
		quoted[i] = `"` + s.name + `"`
	}
	if len(quoted) == 1 {
		return "did you mean " + quoted[0] + "?"
	}
	return "did you mean one of " + strings.Join(quoted, ", ") + "?"
}

// levenshtein computes the edit distance between a and b using two rows.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
