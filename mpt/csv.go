package mpt

import "strings"

// Posting-list value encoding for secondary-index mode (spec.md §3):
// comma-separated, insertion-order-preserving, no duplicates.

func csvTokens(csv []byte) []string {
	if len(csv) == 0 {
		return nil
	}
	return strings.Split(string(csv), ",")
}

func csvContains(csv []byte, token string) bool {
	for _, t := range csvTokens(csv) {
		if t == token {
			return true
		}
	}
	return false
}

func csvAppend(csv []byte, token string) []byte {
	tokens := csvTokens(csv)
	tokens = append(tokens, token)
	return []byte(strings.Join(tokens, ","))
}

func csvRemove(csv []byte, token string) []byte {
	tokens := csvTokens(csv)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != token {
			out = append(out, t)
		}
	}
	return []byte(strings.Join(out, ","))
}
