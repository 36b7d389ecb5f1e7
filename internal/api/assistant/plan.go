package assistant

import (
	"strconv"

	"TutorDesk/internal/entity"
)

// LessonPatch is a partial update against one lesson row. Nil fields are
// left untouched.
type LessonPatch struct {
	Date            *string `json:"date,omitempty"`
	Time            *string `json:"time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	AmountCents     *int    `json:"amount_cents,omitempty"`
	Completed       *bool   `json:"completed,omitempty"`
	Note            *string `json:"note,omitempty"`
}

func (p LessonPatch) IsEmpty() bool {
	return p.Date == nil && p.Time == nil && p.DurationMinutes == nil &&
		p.AmountCents == nil && p.Completed == nil && p.Note == nil
}

type PlannedUpdate struct {
	LessonID string      `json:"lesson_id"`
	Patch    LessonPatch `json:"patch"`
}

// PlannedCreate is a full new-row specification, id assigned by the store.
type PlannedCreate struct {
	StudentID       string `json:"student_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	AmountCents     int    `json:"amount_cents"`
	Completed       bool   `json:"completed"`
	Note            string `json:"note,omitempty"`
}

// FieldExpectation records the value one field of one lesson row must hold
// after execution. Values are compared in string form.
type FieldExpectation struct {
	LessonID string `json:"lesson_id"`
	Field    string `json:"field"`
	Want     string `json:"want"`
}

// RowExpectation records that a lesson row for (student, date) must exist
// with the given completed flag after execution.
type RowExpectation struct {
	StudentID string `json:"student_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type Verification struct {
	Fields []FieldExpectation `json:"fields,omitempty"`
	Rows   []RowExpectation   `json:"rows,omitempty"`
}

// CommandPlan is the intended set of side effects of one command: ordered
// row updates, new rows, and the expectations the verifier checks after the
// writes land.
type CommandPlan struct {
	Updates      []PlannedUpdate `json:"updates,omitempty"`
	Creates      []PlannedCreate `json:"creates,omitempty"`
	Verification Verification    `json:"verification"`
}

func (p *CommandPlan) IsEmpty() bool {
	return p == nil || (len(p.Updates) == 0 && len(p.Creates) == 0)
}

// ExpectFields appends one field expectation per set field of the patch.
func (v *Verification) ExpectFields(lessonID string, patch LessonPatch) {
	if patch.Date != nil {
		v.Fields = append(v.Fields, FieldExpectation{lessonID, "date", *patch.Date})
	}
	if patch.Time != nil {
		v.Fields = append(v.Fields, FieldExpectation{lessonID, "time", *patch.Time})
	}
	if patch.DurationMinutes != nil {
		v.Fields = append(v.Fields, FieldExpectation{lessonID, "duration_minutes", strconv.Itoa(*patch.DurationMinutes)})
	}
	if patch.AmountCents != nil {
		v.Fields = append(v.Fields, FieldExpectation{lessonID, "amount_cents", strconv.Itoa(*patch.AmountCents)})
	}
	if patch.Completed != nil {
		v.Fields = append(v.Fields, FieldExpectation{lessonID, "completed", strconv.FormatBool(*patch.Completed)})
	}
	if patch.Note != nil {
		v.Fields = append(v.Fields, FieldExpectation{lessonID, "note", *patch.Note})
	}
}

// LessonField returns the named field of a lesson in the same string form
// FieldExpectation.Want uses.
func LessonField(lesson entity.Lesson, field string) string {
	switch field {
	case "date":
		return lesson.Date
	case "time":
		return lesson.Time
	case "duration_minutes":
		return strconv.Itoa(lesson.DurationMinutes)
	case "amount_cents":
		return strconv.Itoa(lesson.AmountCents)
	case "completed":
		return strconv.FormatBool(lesson.Completed)
	case "note":
		return lesson.Note
	default:
		return ""
	}
}

// ScheduledLesson is one entry of the day-projection view: a weekly slot
// merged with its lesson row when one exists. LessonID is nil for slots
// with nothing recorded yet.
type ScheduledLesson struct {
	LessonID        *string `json:"lesson_id"`
	StudentID       string  `json:"student_id"`
	Name            string  `json:"name"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	DurationMinutes int     `json:"duration_minutes"`
	AmountCents     int     `json:"amount_cents"`
	Completed       bool    `json:"completed"`
}

// ProjectDay combines schedule defaults with existing lesson rows for one
// date. Students terminated on or before the date are excluded; a
// schedule-change override replaces the weekly slots once effective. A
// lesson row always wins over its slot defaults, and rows without a
// matching slot (moved-in lessons) still appear.
func ProjectDay(students []entity.Student, lessons []entity.Lesson, date string, weekday int) []ScheduledLesson {
	byStudent := make(map[string]entity.Lesson)
	for _, lesson := range lessons {
		if lesson.Date == date {
			byStudent[lesson.StudentID] = lesson
		}
	}

	var out []ScheduledLesson
	seen := make(map[string]bool)

	for _, student := range students {
		if !student.ActiveOn(date) {
			continue
		}
		for _, slot := range student.SlotsOn(date) {
			if slot.Weekday != weekday {
				continue
			}
			entry := ScheduledLesson{
				StudentID:       student.ID,
				Name:            student.FullName(),
				Date:            date,
				Time:            slot.Time,
				DurationMinutes: slot.DurationMinutes,
				AmountCents:     slot.AmountCents,
			}
			if lesson, ok := byStudent[student.ID]; ok {
				id := lesson.ID
				entry.LessonID = &id
				entry.Time = lesson.Time
				entry.DurationMinutes = lesson.DurationMinutes
				entry.AmountCents = lesson.AmountCents
				entry.Completed = lesson.Completed
			}
			out = append(out, entry)
			seen[student.ID] = true
			break
		}
	}

	// Lessons on this date without a scheduled slot, e.g. moved in from
	// another day.
	for _, student := range students {
		lesson, ok := byStudent[student.ID]
		if !ok || seen[student.ID] {
			continue
		}
		id := lesson.ID
		out = append(out, ScheduledLesson{
			LessonID:        &id,
			StudentID:       student.ID,
			Name:            student.FullName(),
			Date:            date,
			Time:            lesson.Time,
			DurationMinutes: lesson.DurationMinutes,
			AmountCents:     lesson.AmountCents,
			Completed:       lesson.Completed,
		})
	}

	return out
}
