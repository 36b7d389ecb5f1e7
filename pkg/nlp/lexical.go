package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stop words stripped before name-fragment extraction: attendance verbs,
// connectors, units, and date words across the supported languages. Anything
// left over after stripping is a potential student name.
var stopWords = map[string]bool{
	// attendance and scheduling verbs
	"came": true, "come": true, "attended": true, "attend": true,
	"present": true, "here": true, "showed": true, "show": true, "up": true,
	"absent": true, "missed": true, "miss": true, "skipped": true, "skip": true,
	"cancel": true, "cancelled": true, "canceled": true,
	"mark": true, "unmark": true, "set": true, "toggle": true, "make": true,
	"change": true, "changed": true, "update": true, "move": true,
	"reschedule": true, "rescheduled": true, "put": true,
	"vino": true, "vinieron": true, "asistio": true, "asistieron": true,
	"falto": true, "faltaron": true,
	"来了": true, "出席": true, "没来": true, "缺席": true,

	// connectors and fillers
	"and": true, "plus": true, "also": true, "with": true, "both": true,
	"the": true, "a": true, "an": true, "to": true, "for": true, "from": true,
	"of": true, "at": true, "on": true, "in": true, "as": true, "is": true,
	"was": true, "were": true, "did": true, "didnt": true, "didn": true,
	"doesnt": true, "doesn": true, "not": true, "no": true,
	"his": true, "her": true, "their": true, "my": true,
	"all": true, "every": true, "everyone": true, "everybody": true,
	"nobody": true, "noone": true,
	"y": true, "e": true, "con": true, "和": true, "跟": true,

	// domain nouns and units
	"lesson": true, "lessons": true, "class": true, "classes": true,
	"session": true, "student": true, "students": true, "schedule": true,
	"attendance": true, "duration": true, "time": true, "rate": true,
	"price": true, "amount": true, "dollars": true, "dollar": true,
	"minute": true, "minutes": true, "min": true, "mins": true,
	"hour": true, "hours": true, "hr": true, "hrs": true, "half": true,
	"long": true, "length": true, "start": true, "starts": true,
	"one": true, "two": true, "three": true, "four": true, "five": true,
	"six": true, "seven": true, "eight": true, "nine": true, "ten": true,
	"going": true, "forward": true, "effective": true, "starting": true,
	"pm": true, "am": true, "oclock": true,

	// date words
	"today": true, "yesterday": true, "tomorrow": true, "tonight": true,
	"morning": true, "afternoon": true, "evening": true,
	"next": true, "last": true, "this": true, "week": true, "day": true,
	"hoy": true, "ayer": true, "manana": true,
	"今天": true, "昨天": true, "明天": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"lunes": true, "martes": true, "miercoles": true, "jueves": true,
	"viernes": true, "sabado": true, "domingo": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
	"nov": true, "dec": true,
}

// connectorWords separate one name from the next in a list.
var connectorWords = map[string]bool{
	"and": true, "plus": true, "y": true, "e": true, "和": true, "跟": true,
}

// Tokens that start with a digit are amounts, clock times, or dates, never
// names.
var numericTokenRe = regexp.MustCompile(`^\d`)

// ExtractNameFragments strips the stop-word set from a normalized copy of
// the text and splits the remainder on commas, ampersands, and list
// connectors. Fragments come back in the order they appeared.
func ExtractNameFragments(text string) []string {
	norm := normalizeText(text)

	var fragments []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			fragments = append(fragments, strings.Join(current, " "))
			current = nil
		}
	}

	for _, token := range strings.Fields(norm) {
		switch {
		case token == ",", token == "&", connectorWords[token]:
			flush()
		case stopWords[token], numericTokenRe.MatchString(token), len(token) == 1:
			// stripped
		default:
			current = append(current, token)
		}
	}
	flush()

	return fragments
}

// normalizeText lowercases, strips diacritics, and folds punctuation to
// spaces — except commas and ampersands, which survive as their own tokens
// because the fragment splitter keys on them. Possessives are dropped before
// folding so "Leo's" comes out as "leo".
func normalizeText(text string) string {
	folded := foldText(text)
	folded = strings.ReplaceAll(folded, "'s ", " ")
	folded = strings.TrimSuffix(folded, "'s")

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ',' || r == '&':
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func stripDiacritics(text string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return result
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Verb vocabularies the intent classifier keys on.
var (
	markVerbs = []string{
		"came", "come", "attended", "attend", "present", "here",
		"showed up", "showed", "made it",
		"vino", "vinieron", "asistio", "asistieron", "来了", "出席",
	}
	unmarkVerbs = []string{
		"absent", "missed", "didnt come", "didn t come", "did not come",
		"skipped", "no show", "falto", "faltaron", "没来", "缺席",
	}
	timeVerbs    = []string{"set", "change", "start", "update", "switch"}
	rateWords    = []string{"rate", "price", "charge", "charges", "cost", "costs", "per hour"}
	forwardWords = []string{"going forward", "effective", "starting"}
	bulkWords    = []string{"all students", "everyone", "everybody", "all my students"}
	noOneWords   = []string{"no one", "noone", "nobody"}
	helpWords    = []string{"help", "what can you do", "what can you help"}
	moveVerbs    = []string{"move", "reschedule"}
)

func containsAnyWord(norm string, words []string) bool {
	for _, w := range words {
		if containsWord(norm, w) {
			return true
		}
	}
	return false
}

func hasMarkVerb(norm string) bool   { return containsAnyWord(norm, markVerbs) }
func hasUnmarkVerb(norm string) bool { return containsAnyWord(norm, unmarkVerbs) }
