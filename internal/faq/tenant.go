package faq

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is a stored hotel question/answer pair.
type Entry struct {
	Question string
	Answer   string
}

// minTokenRunes is the shortest question word used for keyword matching.
const minTokenRunes = 4

// Normalize lowercases s and collapses all whitespace runs to one space.
func Normalize(s string) string {
	// cases.Caser keeps state, so one per call.
	return strings.Join(strings.Fields(cases.Lower(language.Und).String(s)), " ")
}

// MatchEntry returns the first entry whose question matches msg.
//
// After normalization a question matches when either string contains the
// other, or when its first word of at least four letters appears anywhere in
// the message. Blank questions are skipped. A first match with a blank answer
// ends the search without a hit.
func MatchEntry(msg string, entries []Entry) (Entry, bool) {
	m := Normalize(msg)
	if m == "" {
		return Entry{}, false
	}
	for _, e := range entries {
		q := Normalize(e.Question)
		if q == "" {
			continue
		}
		hit := strings.Contains(m, q) || strings.Contains(q, m)
		if !hit {
			tok := firstLongToken(q)
			hit = tok != "" && strings.Contains(m, tok)
		}
		if hit {
			return e, strings.TrimSpace(e.Answer) != ""
		}
	}
	return Entry{}, false
}

func firstLongToken(q string) string {
	for _, w := range strings.Split(q, " ") {
		if utf8.RuneCountInString(w) >= minTokenRunes {
			return w
		}
	}
	return ""
}
