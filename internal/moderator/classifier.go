package moderator

import "strings"

// VerdictKind says which word list, if any, a message matched
type VerdictKind int

const (
	VerdictClean VerdictKind = iota
	VerdictForbidden
	VerdictSensitive
)

// Verdict is the classifier outcome. Word is the first matching entry of
// the winning list, empty for a clean message.
type Verdict struct {
	Kind VerdictKind
	Word string
}

// Classify checks a message body against the forbidden and sensitive word
// lists. Matching is case-insensitive substring containment. Forbidden
// words are checked first, in list order, and the first hit wins; the
// sensitive list is only consulted when no forbidden word matches. No
// side effects.
func Classify(body string, forbidden, sensitive []string) Verdict {
	lower := strings.ToLower(body)

	for _, word := range forbidden {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return Verdict{Kind: VerdictForbidden, Word: word}
		}
	}

	for _, word := range sensitive {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return Verdict{Kind: VerdictSensitive, Word: word}
		}
	}

	return Verdict{Kind: VerdictClean}
}
