package analysis

import (
	"regexp"
	"sort"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	spacePattern   = regexp.MustCompile(`\s+`)
	wordPattern    = regexp.MustCompile(`[A-Za-z][A-Za-z']+`)
)

// Clean normalizes raw post or biography text before analysis: URLs and
// @mentions are removed, hashtag markers are stripped keeping the word, and
// whitespace is collapsed.
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = hashtagPattern.ReplaceAllString(text, "$1")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractMentions returns the @-mention usernames found in raw text, in
// first-seen order, without the marker.
func ExtractMentions(text string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, m := range mentionPattern.FindAllString(text, -1) {
		name := strings.TrimPrefix(m, "@")
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"he": {}, "her": {}, "his": {}, "i": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "me": {}, "my": {}, "not": {}, "of": {}, "on": {}, "or": {},
	"our": {}, "she": {}, "that": {}, "the": {}, "their": {}, "they": {},
	"this": {}, "to": {}, "was": {}, "we": {}, "were": {}, "with": {},
	"you": {}, "your": {},
}

// Keywords extracts the top n most frequent non-stopword terms from cleaned
// text, ties broken alphabetically for stable output.
func Keywords(text string, n int) []string {
	counts := make(map[string]int)
	for _, w := range wordPattern.FindAllString(Clean(text), -1) {
		w = strings.ToLower(w)
		if len(w) <= 2 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		counts[w]++
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return words
}
