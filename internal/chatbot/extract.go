package chatbot

import (
	"regexp"
	"strings"
)

// Extractor pulls request parameters out of free text
type Extractor interface {
	OrderID(question string) (string, bool)
	ProductFragment(question string) (string, bool)
}

var (
	orderIDPattern    = regexp.MustCompile(`\b[0-9A-Z]+\b`)
	stopWordPattern   = regexp.MustCompile(`\b(the|a|an|for|of|in|on|at|to|with|by)\b`)
	leadWordPattern   = regexp.MustCompile(`\b(is|are|do|does|did|you|have|has|how|many|much|any|there|it|your|we|i|what|check|can|please|me)\b`)
	nonWordPattern    = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	fragmentKeywords = []string{"find", "search", "stock", "available", "looking for"}
)

// RuleExtractor is the keyword and pattern based Extractor.
type RuleExtractor struct{}

// OrderID returns the first word made only of digits and capital letters.
// Any such word qualifies, so "track order after MAY 2" yields "MAY".
func (RuleExtractor) OrderID(question string) (string, bool) {
	id := orderIDPattern.FindString(question)
	if id == "" {
		return "", false
	}
	return id, true
}

// ProductFragment takes the text after the first keyword that leaves a
// non-empty remainder once stop words and punctuation are removed. When the
// keyword ends the question ("Is the Blue Jacket available?") the text before
// the first keyword is used instead, minus question words.
func (RuleExtractor) ProductFragment(question string) (string, bool) {
	lower := strings.ToLower(question)

	first := -1
	for _, keyword := range fragmentKeywords {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		if first < 0 {
			first = idx
		}
		if fragment := cleanFragment(lower[idx+len(keyword):]); fragment != "" {
			return fragment, true
		}
	}
	if first < 0 {
		return "", false
	}

	before := leadWordPattern.ReplaceAllString(lower[:first], "")
	if fragment := cleanFragment(before); fragment != "" {
		return fragment, true
	}
	return "", false
}

func cleanFragment(s string) string {
	s = stopWordPattern.ReplaceAllString(s, "")
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
