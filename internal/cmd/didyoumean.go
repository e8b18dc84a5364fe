package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// levenshtein computes the Levenshtein edit distance between two strings.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= la; i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[lb]
}

// closest returns the candidate nearest to input. A fuzzy subsequence match
// ("dlt" for "delete") wins; otherwise the smallest edit distance within 3.
func closest(input string, candidates []string) string {
	input = strings.ToLower(input)
	if input == "" || len(candidates) == 0 {
		return ""
	}

	lower := make([]string, len(candidates))
	for i, c := range candidates {
		lower[i] = strings.ToLower(c)
	}
	if matches := fuzzy.Find(input, lower); len(matches) > 0 {
		return candidates[matches[0].Index]
	}

	bestDist := 4
	bestMatch := ""
	for i, c := range lower {
		if d := levenshtein(input, c); d < bestDist {
			bestDist = d
			bestMatch = candidates[i]
		}
	}
	return bestMatch
}

// suggestCommand finds the closest command name to the unknown input.
func suggestCommand(unknown string, commands []string) string {
	return closest(unknown, commands)
}

// suggestFlag compares without leading dashes but returns the flag as written.
func suggestFlag(unknown string, flags []string) string {
	stripped := make([]string, len(flags))
	for i, f := range flags {
		stripped[i] = strings.TrimLeft(f, "-")
	}
	match := closest(strings.TrimLeft(unknown, "-"), stripped)
	if match == "" {
		return ""
	}
	for i, s := range stripped {
		if s == match {
			return flags[i]
		}
	}
	return ""
}

// suggestProfile finds a saved profile close to name.
func suggestProfile(name string, profiles []string) string {
	return closest(name, profiles)
}
