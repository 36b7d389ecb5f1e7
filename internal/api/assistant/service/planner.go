package assistantService

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"TutorDesk/internal/api/assistant"
	"TutorDesk/internal/entity"
	"TutorDesk/pkg/nlp"
)

// allowedDurations is the closed set of lesson lengths the planner accepts.
// Anything else clarifies instead of being rounded to the nearest value.
var allowedDurations = map[int]bool{30: true, 45: true, 60: true, 90: true, 120: true}

const dateLayout = "2006-01-02"

// BuildPlan turns a structured command into a concrete change plan against
// current data. It mutates nothing: every read goes through the adapter and
// every write is deferred to the executor. A clarification return means the
// command was understood but cannot be planned safely; an error return is
// terminal.
func BuildPlan(ctx context.Context, ad assistant.Adapter, cmd *nlp.StructuredCommand, ref time.Time) (*assistant.CommandPlan, *nlp.Clarification, string, error) {
	date := cmd.Date
	if date == "" {
		date = ref.Format(dateLayout)
	}

	students, err := ad.Students(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	byID := make(map[string]entity.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	switch cmd.Type {
	case nlp.CommandMarkAttendance, nlp.CommandUnmarkAttendance:
		return planAttendance(ctx, ad, cmd, date, students, byID)
	case nlp.CommandSetDuration:
		return planSetDuration(ctx, ad, cmd, date, byID)
	case nlp.CommandSetTime:
		return planSetTime(ctx, ad, cmd, date, byID)
	case nlp.CommandSetRate:
		return planSetRate(ctx, ad, cmd, date, byID)
	case nlp.CommandMoveLesson:
		return planMoveLesson(ctx, ad, cmd, ref, byID)
	default:
		return nil, nil, "", assistant.ErrPlanFailed
	}
}

func planAttendance(ctx context.Context, ad assistant.Adapter, cmd *nlp.StructuredCommand, date string, students []entity.Student, byID map[string]entity.Student) (*assistant.CommandPlan, *nlp.Clarification, string, error) {
	lessons, err := ad.LessonsForDate(ctx, date)
	if err != nil {
		return nil, nil, "", err
	}
	rowFor := make(map[string]entity.Lesson, len(lessons))
	for _, lesson := range lessons {
		rowFor[lesson.StudentID] = lesson
	}

	var targets []entity.Student
	if cmd.AllStudents {
		weekday, err := weekdayOf(date)
		if err != nil {
			return nil, nil, "", assistant.ErrInvalidDate
		}
		// Bulk targets are the students scheduled on this weekday plus
		// anyone whose lesson row was moved onto this exact date.
		for _, s := range students {
			if _, ok := rowFor[s.ID]; ok {
				targets = append(targets, s)
				continue
			}
			if !s.ActiveOn(date) {
				continue
			}
			if _, scheduled := slotForDate(s, date, weekday); scheduled {
				targets = append(targets, s)
			}
		}
		if len(targets) == 0 {
			return nil, nil, "", assistant.ErrNoScheduledStudents
		}
	} else {
		for _, id := range cmd.StudentIDs {
			s, ok := byID[id]
			if !ok {
				return nil, nil, "", assistant.ErrPlanFailed
			}
			targets = append(targets, s)
		}
	}

	plan := &assistant.CommandPlan{}
	present := cmd.Present

	for _, student := range targets {
		if row, ok := rowFor[student.ID]; ok {
			completed := present
			patch := assistant.LessonPatch{Completed: &completed}
			plan.Updates = append(plan.Updates, assistant.PlannedUpdate{LessonID: row.ID, Patch: patch})
			plan.Verification.ExpectFields(row.ID, patch)
			continue
		}

		// No row yet. Present creates one from the schedule; absent never
		// does, because a missing row already means nothing happened.
		if !present {
			if cmd.AllStudents {
				continue
			}
			return nil, &nlp.Clarification{
				Question: fmt.Sprintf("I have no lesson recorded for %s on %s, so there's nothing to mark absent. Should I add an absent record anyway?", student.FullName(), date),
				Options:  []string{"Add absent record", "Cancel"},
			}, "", nil
		}

		weekday, err := weekdayOf(date)
		if err != nil {
			return nil, nil, "", assistant.ErrInvalidDate
		}
		slot, _ := slotForDate(student, date, weekday)
		plan.Creates = append(plan.Creates, assistant.PlannedCreate{
			StudentID:       student.ID,
			Date:            date,
			Time:            slot.Time,
			DurationMinutes: slot.DurationMinutes,
			AmountCents:     slot.AmountCents,
			Completed:       true,
		})
		plan.Verification.Rows = append(plan.Verification.Rows, assistant.RowExpectation{
			StudentID: student.ID,
			Date:      date,
			Completed: true,
		})
	}

	if plan.IsEmpty() {
		return nil, &nlp.Clarification{
			Question: fmt.Sprintf("No lessons are recorded on %s yet, so there's nothing to mark absent.", date),
		}, "", nil
	}

	verb := "absent"
	if present {
		verb = "present"
	}
	n := len(plan.Updates) + len(plan.Creates)
	return plan, nil, fmt.Sprintf("Marked %d student(s) %s on %s.", n, verb, date), nil
}

func planSetDuration(ctx context.Context, ad assistant.Adapter, cmd *nlp.StructuredCommand, date string, byID map[string]entity.Student) (*assistant.CommandPlan, *nlp.Clarification, string, error) {
	if !allowedDurations[cmd.DurationMinutes] {
		return nil, &nlp.Clarification{
			Question: fmt.Sprintf("%d minutes isn't a lesson length I can set. Which should I use instead?", cmd.DurationMinutes),
			Options:  []string{"30 minutes", "45 minutes", "60 minutes", "90 minutes", "120 minutes"},
		}, "", nil
	}

	student, ok := targetStudent(cmd, byID)
	if !ok {
		return nil, nil, "", assistant.ErrPlanFailed
	}

	row, found, err := lessonFor(ctx, ad, student.ID, date)
	if err != nil {
		return nil, nil, "", err
	}

	plan := &assistant.CommandPlan{}
	if found {
		duration := cmd.DurationMinutes
		amount := recomputeAmount(row.AmountCents, row.DurationMinutes, duration)
		patch := assistant.LessonPatch{DurationMinutes: &duration, AmountCents: &amount}
		plan.Updates = append(plan.Updates, assistant.PlannedUpdate{LessonID: row.ID, Patch: patch})
		plan.Verification.ExpectFields(row.ID, patch)
		return plan, nil, fmt.Sprintf("Set %s's lesson on %s to %d minutes.", student.FullName(), date, duration), nil
	}

	slot, clar := scheduledSlot(student, date)
	if clar != nil {
		return nil, clar, "", nil
	}
	plan.Creates = append(plan.Creates, assistant.PlannedCreate{
		StudentID:       student.ID,
		Date:            date,
		Time:            slot.Time,
		DurationMinutes: cmd.DurationMinutes,
		AmountCents:     recomputeAmount(slot.AmountCents, slot.DurationMinutes, cmd.DurationMinutes),
		Completed:       false,
	})
	plan.Verification.Rows = append(plan.Verification.Rows, assistant.RowExpectation{
		StudentID: student.ID,
		Date:      date,
		Completed: false,
	})
	return plan, nil, fmt.Sprintf("Set %s's lesson on %s to %d minutes.", student.FullName(), date, cmd.DurationMinutes), nil
}

func planSetTime(ctx context.Context, ad assistant.Adapter, cmd *nlp.StructuredCommand, date string, byID map[string]entity.Student) (*assistant.CommandPlan, *nlp.Clarification, string, error) {
	student, ok := targetStudent(cmd, byID)
	if !ok {
		return nil, nil, "", assistant.ErrPlanFailed
	}

	row, found, err := lessonFor(ctx, ad, student.ID, date)
	if err != nil {
		return nil, nil, "", err
	}

	plan := &assistant.CommandPlan{}
	if found {
		t := cmd.Time
		patch := assistant.LessonPatch{Time: &t}
		plan.Updates = append(plan.Updates, assistant.PlannedUpdate{LessonID: row.ID, Patch: patch})
		plan.Verification.ExpectFields(row.ID, patch)
		return plan, nil, fmt.Sprintf("Moved %s's lesson on %s to %s.", student.FullName(), date, t), nil
	}

	slot, clar := scheduledSlot(student, date)
	if clar != nil {
		return nil, clar, "", nil
	}
	plan.Creates = append(plan.Creates, assistant.PlannedCreate{
		StudentID:       student.ID,
		Date:            date,
		Time:            cmd.Time,
		DurationMinutes: slot.DurationMinutes,
		AmountCents:     slot.AmountCents,
		Completed:       false,
	})
	plan.Verification.Rows = append(plan.Verification.Rows, assistant.RowExpectation{
		StudentID: student.ID,
		Date:      date,
		Completed: false,
	})
	return plan, nil, fmt.Sprintf("Moved %s's lesson on %s to %s.", student.FullName(), date, cmd.Time), nil
}

func planSetRate(ctx context.Context, ad assistant.Adapter, cmd *nlp.StructuredCommand, date string, byID map[string]entity.Student) (*assistant.CommandPlan, *nlp.Clarification, string, error) {
	student, ok := targetStudent(cmd, byID)
	if !ok {
		return nil, nil, "", assistant.ErrPlanFailed
	}

	row, found, err := lessonFor(ctx, ad, student.ID, date)
	if err != nil {
		return nil, nil, "", err
	}

	plan := &assistant.CommandPlan{}
	if found {
		amount := cmd.RateCents
		patch := assistant.LessonPatch{AmountCents: &amount}
		plan.Updates = append(plan.Updates, assistant.PlannedUpdate{LessonID: row.ID, Patch: patch})
		plan.Verification.ExpectFields(row.ID, patch)
		return plan, nil, fmt.Sprintf("Set %s's rate on %s to $%.2f.", student.FullName(), date, float64(amount)/100), nil
	}

	slot, clar := scheduledSlot(student, date)
	if clar != nil {
		return nil, clar, "", nil
	}
	plan.Creates = append(plan.Creates, assistant.PlannedCreate{
		StudentID:       student.ID,
		Date:            date,
		Time:            slot.Time,
		DurationMinutes: slot.DurationMinutes,
		AmountCents:     cmd.RateCents,
		Completed:       false,
	})
	plan.Verification.Rows = append(plan.Verification.Rows, assistant.RowExpectation{
		StudentID: student.ID,
		Date:      date,
		Completed: false,
	})
	return plan, nil, fmt.Sprintf("Set %s's rate on %s to $%.2f.", student.FullName(), date, float64(cmd.RateCents)/100), nil
}

// planMoveLesson only ever patches an existing row. Moving must keep the
// lesson's identity, so a create is never planned here.
func planMoveLesson(ctx context.Context, ad assistant.Adapter, cmd *nlp.StructuredCommand, ref time.Time, byID map[string]entity.Student) (*assistant.CommandPlan, *nlp.Clarification, string, error) {
	student, ok := targetStudent(cmd, byID)
	if !ok {
		return nil, nil, "", assistant.ErrPlanFailed
	}

	fromDate := cmd.FromDate
	if fromDate == "" {
		fromDate = ref.Format(dateLayout)
	}

	row, found, err := lessonFor(ctx, ad, student.ID, fromDate)
	if err != nil {
		return nil, nil, "", err
	}
	if !found {
		return nil, &nlp.Clarification{
			Question: fmt.Sprintf("I couldn't find a lesson for %s on %s to move. Which date is the lesson currently on?", student.FullName(), fromDate),
		}, "", nil
	}

	toDate := cmd.ToDate
	patch := assistant.LessonPatch{Date: &toDate}
	if cmd.Time != "" {
		t := cmd.Time
		patch.Time = &t
	}
	if cmd.DurationMinutes != 0 {
		if !allowedDurations[cmd.DurationMinutes] {
			return nil, &nlp.Clarification{
				Question: fmt.Sprintf("%d minutes isn't a lesson length I can set. Which should I use instead?", cmd.DurationMinutes),
				Options:  []string{"30 minutes", "45 minutes", "60 minutes", "90 minutes", "120 minutes"},
			}, "", nil
		}
		duration := cmd.DurationMinutes
		amount := recomputeAmount(row.AmountCents, row.DurationMinutes, duration)
		patch.DurationMinutes = &duration
		patch.AmountCents = &amount
	}

	plan := &assistant.CommandPlan{}
	plan.Updates = append(plan.Updates, assistant.PlannedUpdate{LessonID: row.ID, Patch: patch})
	plan.Verification.ExpectFields(row.ID, patch)

	return plan, nil, fmt.Sprintf("Moved %s's lesson from %s to %s.", student.FullName(), fromDate, toDate), nil
}

func targetStudent(cmd *nlp.StructuredCommand, byID map[string]entity.Student) (entity.Student, bool) {
	if len(cmd.StudentIDs) != 1 {
		return entity.Student{}, false
	}
	s, ok := byID[cmd.StudentIDs[0]]
	return s, ok
}

func lessonFor(ctx context.Context, ad assistant.Adapter, studentID, date string) (entity.Lesson, bool, error) {
	row, err := ad.LessonForStudentOnDate(ctx, studentID, date)
	if err != nil {
		if errors.Is(err, entity.ErrLessonNotFound) {
			return entity.Lesson{}, false, nil
		}
		return entity.Lesson{}, false, err
	}
	return row, true, nil
}

// slotForDate picks the student's slot matching the weekday; scheduled is
// false when the student has no slot that day and the primary slot is used
// as a fallback for defaults.
func slotForDate(s entity.Student, date string, weekday int) (entity.ScheduleSlot, bool) {
	slots := s.SlotsOn(date)
	for _, slot := range slots {
		if slot.Weekday == weekday {
			return slot, true
		}
	}
	if len(slots) == 0 {
		return entity.ScheduleSlot{}, false
	}
	return slots[0], false
}

// scheduledSlot requires a real slot on the date; without one there is no
// lesson to adjust and the planner asks instead of inventing a row.
func scheduledSlot(student entity.Student, date string) (entity.ScheduleSlot, *nlp.Clarification) {
	weekday, err := weekdayOf(date)
	if err != nil {
		return entity.ScheduleSlot{}, &nlp.Clarification{Question: fmt.Sprintf("%q doesn't look like a date I can use.", date)}
	}
	slot, scheduled := slotForDate(student, date, weekday)
	if !scheduled {
		return entity.ScheduleSlot{}, &nlp.Clarification{
			Question: fmt.Sprintf("I couldn't find a lesson for %s on %s. Which date did you mean?", student.FullName(), date),
		}
	}
	return slot, nil
}

func weekdayOf(date string) (int, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// recomputeAmount scales the lesson amount proportionally to the duration
// change, rounding to the nearest cent.
func recomputeAmount(oldAmount, oldDuration, newDuration int) int {
	if oldDuration == 0 {
		return oldAmount
	}
	return int(math.Round(float64(oldAmount) / float64(oldDuration) * float64(newDuration)))
}
