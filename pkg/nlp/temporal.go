package nlp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateKeyLayout = "2006-01-02"

// Relative-date words per supported language. The extractor never guesses a
// language; every table is checked against the normalized text.
var (
	todayWords     = []string{"today", "hoy", "今天"}
	yesterdayWords = []string{"yesterday", "ayer", "昨天"}
	tomorrowWords  = []string{"tomorrow", "manana", "明天"}
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,

	"domingo": time.Sunday, "lunes": time.Monday, "martes": time.Tuesday,
	"miercoles": time.Wednesday, "jueves": time.Thursday,
	"viernes": time.Friday, "sabado": time.Saturday,

	"星期天": time.Sunday, "星期日": time.Sunday, "星期一": time.Monday,
	"星期二": time.Tuesday, "星期三": time.Wednesday, "星期四": time.Thursday,
	"星期五": time.Friday, "星期六": time.Saturday,
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	monthDayRe  = regexp.MustCompile(`\b([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
)

// ResolveDate pulls the best-effort date key out of text relative to the
// caller's reference date. The precedence order is fixed: relative words,
// qualified weekdays, month-day, ISO literals, bare weekdays, slash dates.
// The second return reports whether the text actually named a date; when it
// is false the reference date is returned unchanged.
func ResolveDate(text string, ref time.Time) (string, bool) {
	norm := foldText(text)

	for _, w := range todayWords {
		if containsWord(norm, w) {
			return ref.Format(dateKeyLayout), true
		}
	}
	for _, w := range yesterdayWords {
		if containsWord(norm, w) {
			return ref.AddDate(0, 0, -1).Format(dateKeyLayout), true
		}
	}
	for _, w := range tomorrowWords {
		if containsWord(norm, w) {
			return ref.AddDate(0, 0, 1).Format(dateKeyLayout), true
		}
	}

	if wd, qualifier, ok := findQualifiedWeekday(norm); ok {
		switch qualifier {
		case "next":
			return nextWeekday(ref, wd).Format(dateKeyLayout), true
		case "last":
			return lastWeekday(ref, wd).Format(dateKeyLayout), true
		case "this":
			return mostRecentWeekday(ref, wd).Format(dateKeyLayout), true
		}
	}

	if d, ok := findMonthDay(norm, ref); ok {
		return d, true
	}

	if m := isoDateRe.FindStringSubmatch(norm); m != nil {
		if _, err := time.Parse(dateKeyLayout, m[0]); err == nil {
			return m[0], true
		}
	}

	if wd, ok := findBareWeekday(norm); ok {
		return mostRecentWeekday(ref, wd).Format(dateKeyLayout), true
	}

	if d, ok := findSlashDate(norm, ref); ok {
		return d, true
	}

	return ref.Format(dateKeyLayout), false
}

// WeekdayAmbiguity is produced when a move phrase names a bare weekday: the
// user could mean last week's or next week's occurrence, and the two
// candidates must be offered instead of guessed between.
type WeekdayAmbiguity struct {
	Weekday time.Weekday
	Last    string
	Next    string
}

// ResolveMovePhraseDate resolves one half of a move phrase. A bare weekday
// with no qualifier, relative keyword, or fully-qualified date is genuinely
// ambiguous for moves and yields a WeekdayAmbiguity instead of a date.
func ResolveMovePhraseDate(phrase string, ref time.Time) (string, bool, *WeekdayAmbiguity) {
	norm := foldText(phrase)

	if hasDateQualifier(norm) || hasRelativeDateWord(norm) || hasFullyQualifiedDate(norm, ref) {
		d, ok := ResolveDate(phrase, ref)
		return d, ok, nil
	}

	if wd, ok := findBareWeekday(norm); ok {
		return "", false, &WeekdayAmbiguity{
			Weekday: wd,
			Last:    lastWeekday(ref, wd).Format(dateKeyLayout),
			Next:    nextWeekday(ref, wd).Format(dateKeyLayout),
		}
	}

	d, ok := ResolveDate(phrase, ref)
	return d, ok, nil
}

func hasDateQualifier(norm string) bool {
	return containsWord(norm, "next") || containsWord(norm, "last") || containsWord(norm, "this")
}

func hasRelativeDateWord(norm string) bool {
	for _, set := range [][]string{todayWords, yesterdayWords, tomorrowWords} {
		for _, w := range set {
			if containsWord(norm, w) {
				return true
			}
		}
	}
	return false
}

func hasFullyQualifiedDate(norm string, ref time.Time) bool {
	if isoDateRe.MatchString(norm) {
		return true
	}
	if _, ok := findMonthDay(norm, ref); ok {
		return true
	}
	if _, ok := findSlashDate(norm, ref); ok {
		return true
	}
	return false
}

// nextWeekday resolves to a date strictly after ref: the same weekday is a
// full week out, never ref itself.
func nextWeekday(ref time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return ref.AddDate(0, 0, days)
}

// lastWeekday resolves strictly into the past.
func lastWeekday(ref time.Time, wd time.Weekday) time.Time {
	days := (int(ref.Weekday()) - int(wd) + 7) % 7
	if days == 0 {
		days = 7
	}
	return ref.AddDate(0, 0, -days)
}

// mostRecentWeekday is the occurrence at or before ref, inclusive of today.
func mostRecentWeekday(ref time.Time, wd time.Weekday) time.Time {
	days := (int(ref.Weekday()) - int(wd) + 7) % 7
	return ref.AddDate(0, 0, -days)
}

func findQualifiedWeekday(norm string) (time.Weekday, string, bool) {
	for name, wd := range weekdayNames {
		for _, q := range []string{"next", "last", "this"} {
			if strings.Contains(norm, q+" "+name) {
				return wd, q, true
			}
		}
	}
	return 0, "", false
}

func findBareWeekday(norm string) (time.Weekday, bool) {
	for name, wd := range weekdayNames {
		if containsWord(norm, name) {
			return wd, true
		}
	}
	return 0, false
}

// findMonthDay assumes the current year unless that lands more than ~183
// days in the future, in which case the prior year is meant.
func findMonthDay(norm string, ref time.Time) (string, bool) {
	for _, m := range monthDayRe.FindAllStringSubmatch(norm, -1) {
		month, ok := monthNames[m[1]]
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[2])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		candidate := time.Date(ref.Year(), month, day, 0, 0, 0, 0, ref.Location())
		if candidate.Day() != day {
			continue
		}
		if candidate.Sub(ref) > 183*24*time.Hour {
			candidate = candidate.AddDate(-1, 0, 0)
		}
		return candidate.Format(dateKeyLayout), true
	}
	return "", false
}

func findSlashDate(norm string, ref time.Time) (string, bool) {
	m := slashDateRe.FindStringSubmatch(norm)
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	year := ref.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}
	candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location())
	if candidate.Day() != day {
		return "", false
	}
	return candidate.Format(dateKeyLayout), true
}

var (
	clockRe      = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm|a\.m\.|p\.m\.)?\b`)
	hourAmPmRe   = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm|a\.m\.|p\.m\.)\b`)
	bareHourRe   = regexp.MustCompile(`\b(?:start at|at|to)\s+(\d{1,2})\b`)
	timeLikeRe   = regexp.MustCompile(`\b\d{1,2}:\d{2}\b|\b\d{1,2}\s*(?:am|pm)\b`)
	eveningWords = []string{"afternoon", "evening", "tonight"}
)

// ExtractTime parses a clock time out of text and normalizes it to
// "H:MM AM/PM". The third return reports that a time-like token was present
// but out of range; callers must clarify rather than drop it.
func ExtractTime(text string) (string, bool, bool) {
	norm := foldText(text)

	pmContext := false
	for _, w := range eveningWords {
		if strings.Contains(norm, w) {
			pmContext = true
			break
		}
	}

	if m := clockRe.FindStringSubmatch(norm); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		meridiem := strings.ReplaceAll(m[3], ".", "")
		if minute > 59 {
			return "", false, true
		}
		if meridiem != "" {
			if hour < 1 || hour > 12 {
				return "", false, true
			}
			return formatClock(to24Hour(hour, meridiem == "pm"), minute), true, false
		}
		if hour > 23 {
			return "", false, true
		}
		if hour < 12 && pmContext {
			hour += 12
		}
		return formatClock(hour, minute), true, false
	}

	if m := hourAmPmRe.FindStringSubmatch(norm); m != nil {
		hour, _ := strconv.Atoi(m[1])
		meridiem := strings.ReplaceAll(m[2], ".", "")
		if hour < 1 || hour > 12 {
			return "", false, true
		}
		return formatClock(to24Hour(hour, meridiem == "pm"), 0), true, false
	}

	// Digits inside a slash date ("to 2/21") are a date, not a bare hour.
	if m := bareHourRe.FindStringSubmatch(slashDateRe.ReplaceAllString(norm, " ")); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour < 1 || hour > 12 {
			return "", false, true
		}
		if pmContext && hour != 12 {
			hour += 12
		}
		return formatClock(hour, 0), true, false
	}

	return "", false, false
}

// HasTimeToken reports whether the text carries something that looks like a
// clock time at all, valid or not.
func HasTimeToken(text string) bool {
	return timeLikeRe.MatchString(foldText(text))
}

func to24Hour(hour int, pm bool) int {
	if pm && hour != 12 {
		return hour + 12
	}
	if !pm && hour == 12 {
		return 0
	}
	return hour
}

func formatClock(hour24, minute int) string {
	meridiem := "AM"
	hour := hour24
	switch {
	case hour24 == 0:
		hour = 12
	case hour24 == 12:
		meridiem = "PM"
	case hour24 > 12:
		hour = hour24 - 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

var (
	minutesRe   = regexp.MustCompile(`\b(\d+)\s*(?:minutes?|mins?)\b`)
	hoursRe     = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`)
	halfHourRe  = regexp.MustCompile(`\bhalf\s+an?\s+hour\b`)
	oneHourRe   = regexp.MustCompile(`\b(?:one|an)\s+hour\b`)
	dollarRe    = regexp.MustCompile(`\$\s*(\d+(?:\.\d{1,2})?)`)
	dollarsRe   = regexp.MustCompile(`\b(\d+(?:\.\d{1,2})?)\s*dollars?\b`)
	perHourRe   = regexp.MustCompile(`\b(\d+(?:\.\d{1,2})?)\s*(?:/\s*hr|per\s+hour|an\s+hour)\b`)
)

// ExtractDuration recognizes minute and hour phrases. Hour fractions are
// rounded to the nearest minute; nothing else is rounded.
func ExtractDuration(text string) (int, bool) {
	norm := foldText(text)

	if m := minutesRe.FindStringSubmatch(norm); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return minutes, true
	}
	if m := hoursRe.FindStringSubmatch(norm); m != nil {
		hours, _ := strconv.ParseFloat(m[1], 64)
		return int(math.Round(hours * 60)), true
	}
	if halfHourRe.MatchString(norm) {
		return 30, true
	}
	if oneHourRe.MatchString(norm) {
		return 60, true
	}
	return 0, false
}

// ExtractRate recognizes hourly-rate phrases and returns minor currency
// units.
func ExtractRate(text string) (int, bool) {
	norm := foldText(text)

	for _, re := range []*regexp.Regexp{dollarRe, perHourRe, dollarsRe} {
		if m := re.FindStringSubmatch(norm); m != nil {
			amount, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			return int(math.Round(amount * 100)), true
		}
	}
	return 0, false
}

// foldText lowercases and strips diacritics without folding the punctuation
// that clock, rate, and date tokens depend on. Defined in lexical.go is the
// heavier normalizeText used for name-fragment extraction.
func foldText(text string) string {
	return stripDiacritics(strings.ToLower(strings.TrimSpace(text)))
}

func containsWord(norm, word string) bool {
	idx := strings.Index(norm, word)
	for idx >= 0 {
		before := idx == 0 || !isWordChar(rune(norm[idx-1]))
		end := idx + len(word)
		after := end >= len(norm) || !isWordChar(rune(norm[end]))
		if before && after {
			return true
		}
		next := strings.Index(norm[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
