package nlp

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"TutorDesk/internal/entity"
)

// classifyContext carries the raw text plus every extractor output so the
// rules never re-run an extractor.
type classifyContext struct {
	raw      string
	fold     string // lowercased, diacritics stripped, punctuation kept
	norm     string // fully normalized token stream
	ref      time.Time
	students []entity.Student

	date         string
	dateExplicit bool
	timeStr      string
	timeFound    bool
	timeInvalid  bool
	duration     int
	durationOK   bool
	rate         int
	rateOK       bool
}

type classifyRule struct {
	name  string
	apply func(*classifyContext) *Outcome
}

// classifyRules is the fixed cascade: first matching rule produces the
// command, no backtracking. The order is behavior, not style — reordering
// these is a breaking change.
var classifyRules = []classifyRule{
	{"empty", ruleEmpty},
	{"help", ruleHelp},
	{"mass_absence_unconfirmed", ruleMassAbsence},
	{"move_lesson", ruleMoveLesson},
	{"set_duration", ruleSetDuration},
	{"set_time", ruleSetTime},
	{"set_rate", ruleSetRate},
	{"bulk_attendance", ruleBulkAttendance},
	{"named_attendance", ruleNamedAttendance},
}

// Classify runs the rule cascade over one transcript. The outcome is either
// a structured command or a clarification; it is never both and never
// neither (the final fallback always answers).
func Classify(text string, ref time.Time, students []entity.Student) Outcome {
	ctx := &classifyContext{
		raw:      text,
		fold:     foldText(text),
		norm:     normalizeText(text),
		ref:      ref,
		students: students,
	}
	ctx.date, ctx.dateExplicit = ResolveDate(text, ref)
	ctx.timeStr, ctx.timeFound, ctx.timeInvalid = ExtractTime(text)
	ctx.duration, ctx.durationOK = ExtractDuration(text)
	ctx.rate, ctx.rateOK = ExtractRate(text)

	for _, rule := range classifyRules {
		if outcome := rule.apply(ctx); outcome != nil {
			return *outcome
		}
	}

	return clarify("I'm not sure what you'd like me to do. Try something like \"Sarah and Tiffany came today\", or say \"help\".")
}

func clarify(question string, options ...string) Outcome {
	return Outcome{Clarification: &Clarification{Question: question, Options: options}}
}

func command(cmd StructuredCommand) *Outcome {
	return &Outcome{Command: &cmd}
}

func ruleEmpty(ctx *classifyContext) *Outcome {
	if strings.TrimSpace(ctx.raw) != "" {
		return nil
	}
	o := clarify("I didn't catch that. Could you say it again?")
	return &o
}

func ruleHelp(ctx *classifyContext) *Outcome {
	if !containsAnyWord(ctx.norm, helpWords) {
		return nil
	}
	return command(StructuredCommand{Type: CommandHelp})
}

// "no one"/"nobody" without an action verb is never silently treated as
// mass absence; the user must confirm.
func ruleMassAbsence(ctx *classifyContext) *Outcome {
	if !containsAnyWord(ctx.norm, noOneWords) {
		return nil
	}
	if hasMarkVerb(ctx.norm) || hasUnmarkVerb(ctx.norm) {
		return nil
	}
	o := clarify(
		"Did you mean that no students attended? I won't assume that without confirmation.",
		"Mark everyone absent",
		"Cancel",
	)
	return &o
}

var (
	possessiveRe = regexp.MustCompile(`(?:move|reschedule)\s+([\p{L}]+(?:\s+[\p{L}]+)?)'s`)
	fromToRe     = regexp.MustCompile(`\bfrom\s+(.+?)\s+to\s+(.+)$`)
	toOnlyRe     = regexp.MustCompile(`\bto\s+(.+)$`)
)

func ruleMoveLesson(ctx *classifyContext) *Outcome {
	if !containsAnyWord(ctx.norm, moveVerbs) {
		return nil
	}

	var fromPhrase, toPhrase string
	if m := fromToRe.FindStringSubmatch(ctx.fold); m != nil {
		fromPhrase, toPhrase = m[1], m[2]
	} else if m := toOnlyRe.FindStringSubmatch(ctx.fold); m != nil {
		toPhrase = m[1]
	}
	if strings.TrimSpace(toPhrase) == "" {
		o := clarify("When should I move the lesson to?")
		return &o
	}

	cmd := StructuredCommand{Type: CommandMoveLesson}

	if fromPhrase != "" {
		date, ok, amb := ResolveMovePhraseDate(fromPhrase, ctx.ref)
		if amb != nil {
			o := weekdayClarification("Which "+strings.ToLower(amb.Weekday.String())+" should I move the lesson from?", amb)
			return &o
		}
		if ok {
			cmd.FromDate = date
		}
	}

	toDate, ok, amb := ResolveMovePhraseDate(toPhrase, ctx.ref)
	if amb != nil {
		o := weekdayClarification("Which "+strings.ToLower(amb.Weekday.String())+" should I move the lesson to?", amb)
		return &o
	}
	if !ok {
		o := clarify("I couldn't work out the date to move the lesson to. Which date did you mean?")
		return &o
	}
	cmd.ToDate = toDate

	// A time-like token that fails to parse must clarify, never be dropped.
	if ctx.timeInvalid || (HasTimeToken(ctx.raw) && !ctx.timeFound) {
		o := clarify("I couldn't read the time in that. What time should the lesson start?")
		return &o
	}
	if ctx.timeFound {
		cmd.Time = ctx.timeStr
	}
	if ctx.durationOK {
		cmd.DurationMinutes = ctx.duration
	}

	resolution, outcome := resolveSingleName(ctx, movePhraseNameFragments(ctx), "Which student's lesson should I move?")
	if outcome != nil {
		return outcome
	}
	cmd.StudentIDs = []string{resolution.Match.Student.ID}

	return command(cmd)
}

// movePhraseNameFragments prefers the possessive right after the verb
// ("move Leo's lesson ...") and falls back to generic extraction.
func movePhraseNameFragments(ctx *classifyContext) []string {
	if m := possessiveRe.FindStringSubmatch(ctx.fold); m != nil {
		return []string{m[1]}
	}
	return ExtractNameFragments(ctx.raw)
}

func weekdayClarification(question string, amb *WeekdayAmbiguity) Outcome {
	day := amb.Weekday.String()
	return Outcome{Clarification: &Clarification{
		Question: question,
		Options: []string{
			fmt.Sprintf("Last %s (%s)", day, amb.Last),
			fmt.Sprintf("Next %s (%s)", day, amb.Next),
		},
	}}
}

var durationCues = []string{"duration", "long", "length", "set", "change", "make", "update"}

func ruleSetDuration(ctx *classifyContext) *Outcome {
	if !ctx.durationOK || !containsAnyWord(ctx.norm, durationCues) {
		return nil
	}

	cmd := StructuredCommand{Type: CommandSetDuration, DurationMinutes: ctx.duration}
	if ctx.dateExplicit {
		cmd.Date = ctx.date
	}

	resolution, outcome := resolveSingleName(ctx, ExtractNameFragments(ctx.raw), "Whose lesson duration should I change?")
	if outcome != nil {
		return outcome
	}
	cmd.StudentIDs = []string{resolution.Match.Student.ID}

	return command(cmd)
}

func ruleSetTime(ctx *classifyContext) *Outcome {
	if !containsAnyWord(ctx.norm, timeVerbs) {
		return nil
	}
	if ctx.timeInvalid {
		o := clarify("I couldn't read that time. What time should the lesson start?")
		return &o
	}
	if !ctx.timeFound {
		return nil
	}

	cmd := StructuredCommand{Type: CommandSetTime, Time: ctx.timeStr}
	if ctx.dateExplicit {
		cmd.Date = ctx.date
	}

	resolution, outcome := resolveSingleName(ctx, ExtractNameFragments(ctx.raw), "Whose lesson time should I change?")
	if outcome != nil {
		return outcome
	}
	cmd.StudentIDs = []string{resolution.Match.Student.ID}

	return command(cmd)
}

func ruleSetRate(ctx *classifyContext) *Outcome {
	if !ctx.rateOK || !containsAnyWord(ctx.fold, rateWords) {
		return nil
	}

	// Recurring scope is detected but unsupported; applying it silently as
	// a single-date change would be wrong in the other direction.
	if containsAnyWord(ctx.fold, forwardWords) {
		o := clarify("Recurring rate changes aren't supported yet. I can set the rate for a single date — which date should I apply it to?")
		return &o
	}

	cmd := StructuredCommand{Type: CommandSetRate, RateCents: ctx.rate}
	if ctx.dateExplicit {
		cmd.Date = ctx.date
	}

	resolution, outcome := resolveSingleName(ctx, ExtractNameFragments(ctx.raw), "Whose rate should I change?")
	if outcome != nil {
		return outcome
	}
	cmd.StudentIDs = []string{resolution.Match.Student.ID}

	return command(cmd)
}

func ruleBulkAttendance(ctx *classifyContext) *Outcome {
	bulk := containsAnyWord(ctx.fold, bulkWords)
	noOne := containsAnyWord(ctx.norm, noOneWords)
	if !bulk && !noOne {
		return nil
	}
	if !hasMarkVerb(ctx.norm) && !hasUnmarkVerb(ctx.norm) {
		return nil
	}

	present := hasMarkVerb(ctx.norm) && !hasUnmarkVerb(ctx.norm) && !noOne

	cmd := StructuredCommand{AllStudents: true, Present: present}
	if present {
		cmd.Type = CommandMarkAttendance
	} else {
		cmd.Type = CommandUnmarkAttendance
	}
	if ctx.dateExplicit {
		cmd.Date = ctx.date
	}
	return command(cmd)
}

var explicitAttendanceRe = regexp.MustCompile(`\b(?:mark|set|unmark|toggle)\s+(.+?)\s+(?:as\s+)?(attended|present|here|absent|missed)\b`)

func ruleNamedAttendance(ctx *classifyContext) *Outcome {
	unmark := hasUnmarkVerb(ctx.norm)
	mark := hasMarkVerb(ctx.norm)
	if !mark && !unmark {
		return nil
	}

	fragments := ExtractNameFragments(ctx.raw)
	if m := explicitAttendanceRe.FindStringSubmatch(ctx.norm); m != nil {
		if explicit := ExtractNameFragments(m[1]); len(explicit) > 0 {
			fragments = explicit
		}
	}
	if len(fragments) == 0 {
		o := clarify("Which students should I mark? I didn't catch any names.")
		return &o
	}

	// All-or-nothing: one ambiguous or unknown name aborts the whole
	// command before anything is planned.
	used := make(map[string]bool)
	var ids []string
	for _, fragment := range fragments {
		res := ResolveName(fragment, ctx.students, used)
		switch res.Outcome {
		case ResolutionMissing:
			o := clarify(fmt.Sprintf("I don't know a student named %q. Who did you mean?", fragment))
			return &o
		case ResolutionAmbiguous:
			o := ambiguousNameClarification(res)
			return &o
		default:
			ids = append(ids, res.Match.Student.ID)
		}
	}

	cmd := StructuredCommand{StudentIDs: ids, Present: !unmark}
	if cmd.Present {
		cmd.Type = CommandMarkAttendance
	} else {
		cmd.Type = CommandUnmarkAttendance
	}
	if ctx.dateExplicit {
		cmd.Date = ctx.date
	}
	return command(cmd)
}

// resolveSingleName walks candidate fragments until one resolves. Ambiguity
// on any fragment clarifies immediately; running out of fragments clarifies
// with the branch-specific question.
func resolveSingleName(ctx *classifyContext, fragments []string, missingQuestion string) (*Resolution, *Outcome) {
	used := make(map[string]bool)
	for _, fragment := range fragments {
		res := ResolveName(fragment, ctx.students, used)
		switch res.Outcome {
		case ResolutionResolved:
			return &res, nil
		case ResolutionAmbiguous:
			o := ambiguousNameClarification(res)
			return nil, &o
		}
	}
	o := clarify(missingQuestion)
	return nil, &o
}

func ambiguousNameClarification(res Resolution) Outcome {
	options := make([]string, 0, 2)
	for i, candidate := range res.Candidates {
		if i >= 2 {
			break
		}
		options = append(options, candidate.Student.FullName())
	}
	return Outcome{Clarification: &Clarification{
		Question: fmt.Sprintf("I found more than one student matching %q. Which one did you mean?", res.Fragment),
		Options:  options,
	}}
}

// HelpText is the assistant's capability summary, returned for the help
// intent.
const HelpText = "You can tell me things like: \"Sarah and Tiffany came today\", " +
	"\"Mark Emma absent yesterday\", \"All students attended\", " +
	"\"Change Chloe's duration to 45 minutes\", \"Set Leo's time to 5pm\", " +
	"\"Change Mia's rate to $80\", or \"Move Leo's lesson from Friday to next Sunday at 5pm\"."
