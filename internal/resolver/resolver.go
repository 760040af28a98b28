// Package resolver maps ambiguous operator references (an id fragment, a
// title guess, or a raw utterance) to exactly one catalog event or none.
// Operators refer to events by memory ("the prayer night one"), so matching
// is forgiving, but it never guesses between equally plausible events: no
// match is always better than a wrong one.
package resolver

import (
	"strings"

	"github.com/familychurch/eventbot/types"
	"github.com/familychurch/eventbot/utils"
)

// Hint carries candidate identifying information from a parsed intent.
type Hint struct {
	EventID string
	Titles  []string
}

// Resolve walks a fixed ladder of match rules, first match wins:
//
//  1. exact id equality
//  2. id substring containment either direction
//  3. case-insensitive title substring (either locale)
//  4. normalized token overlap between raw text and a title
//  5. id-fragment overlap against the raw text
//
// Matching stops at the first catalog entry that satisfies a rule; there is
// no scoring across candidates.
func Resolve(events []types.Event, hint Hint, rawText string) (types.Event, bool) {
	if hint.EventID != "" {
		for _, e := range events {
			if e.ID == hint.EventID {
				return e, true
			}
		}
		// The AI truncates or pads ids; containment either way still
		// identifies a unique event in a small catalog.
		for _, e := range events {
			if strings.Contains(e.ID, hint.EventID) || strings.Contains(hint.EventID, e.ID) {
				return e, true
			}
		}
	}

	for _, title := range hint.Titles {
		want := utils.Normalize(title)
		if want == "" {
			continue
		}
		for _, e := range events {
			for _, have := range []string{utils.Normalize(e.TitlePT), utils.Normalize(e.TitleEN)} {
				if have == "" {
					continue
				}
				if strings.Contains(have, want) || strings.Contains(want, have) {
					return e, true
				}
			}
		}
	}

	raw := utils.Normalize(rawText)
	if raw == "" {
		return types.Event{}, false
	}

	for _, e := range events {
		if titleTokensMatch(e.TitlePT, raw) || titleTokensMatch(e.TitleEN, raw) {
			return e, true
		}
	}

	for _, e := range events {
		if idFragmentsMatch(e.ID, raw) {
			return e, true
		}
	}

	return types.Event{}, false
}

// titleTokensMatch counts how many title tokens (length >= 3, diacritics
// stripped) appear in the normalized raw text. Two matching tokens qualify;
// a title of at most two words qualifies with one.
func titleTokensMatch(title, raw string) bool {
	matches := 0
	for _, tok := range utils.Tokens(title, 3) {
		if strings.Contains(raw, tok) {
			matches++
		}
	}

	if matches >= 2 {
		return true
	}
	return matches >= 1 && len(strings.Fields(title)) <= 2
}

// idFragmentsMatch requires at least two id fragments (split on "-",
// length >= 3) to appear in the raw text.
func idFragmentsMatch(id, raw string) bool {
	matches := 0
	for _, frag := range strings.Split(id, "-") {
		if len(frag) < 3 {
			continue
		}
		if strings.Contains(raw, frag) {
			matches++
		}
	}
	return matches >= 2
}
