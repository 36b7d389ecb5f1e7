package assistantService

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"TutorDesk/internal/api/assistant"
	"TutorDesk/internal/entity"
	"TutorDesk/pkg/nlp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter is an in-memory store. dropWrites makes writes report success
// without changing anything, duplicateCreates inserts every new row twice;
// both are failure modes that read-back verification exists to catch.
type fakeAdapter struct {
	students         []entity.Student
	lessons          map[string]entity.Lesson
	dropWrites       bool
	duplicateCreates bool
	nextID           int
}

func newFakeAdapter(students []entity.Student, lessons ...entity.Lesson) *fakeAdapter {
	byID := make(map[string]entity.Lesson)
	for _, l := range lessons {
		byID[l.ID] = l
	}
	return &fakeAdapter{students: students, lessons: byID}
}

func (f *fakeAdapter) Students(ctx context.Context) ([]entity.Student, error) {
	return f.students, nil
}

func (f *fakeAdapter) LessonsForDate(ctx context.Context, date string) ([]entity.Lesson, error) {
	var out []entity.Lesson
	for _, l := range f.lessons {
		if l.Date == date {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAdapter) LessonByID(ctx context.Context, id string) (entity.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return entity.Lesson{}, entity.ErrLessonNotFound
	}
	return l, nil
}

func (f *fakeAdapter) LessonForStudentOnDate(ctx context.Context, studentID, date string) (entity.Lesson, error) {
	for _, l := range f.lessons {
		if l.StudentID == studentID && l.Date == date {
			return l, nil
		}
	}
	return entity.Lesson{}, entity.ErrLessonNotFound
}

func (f *fakeAdapter) UpdateLessonByID(ctx context.Context, id string, patch assistant.LessonPatch) error {
	l, ok := f.lessons[id]
	if !ok {
		return entity.ErrLessonNotFound
	}
	if f.dropWrites {
		return nil
	}
	if patch.Date != nil {
		l.Date = *patch.Date
	}
	if patch.Time != nil {
		l.Time = *patch.Time
	}
	if patch.DurationMinutes != nil {
		l.DurationMinutes = *patch.DurationMinutes
	}
	if patch.AmountCents != nil {
		l.AmountCents = *patch.AmountCents
	}
	if patch.Completed != nil {
		l.Completed = *patch.Completed
	}
	if patch.Note != nil {
		l.Note = *patch.Note
	}
	f.lessons[id] = l
	return nil
}

func (f *fakeAdapter) AddLesson(ctx context.Context, create assistant.PlannedCreate) (string, error) {
	f.nextID++
	id := fmt.Sprintf("l%d", f.nextID)
	if f.dropWrites {
		return id, nil
	}
	f.insert(id, create)
	if f.duplicateCreates {
		f.nextID++
		f.insert(fmt.Sprintf("l%d", f.nextID), create)
	}
	return id, nil
}

func (f *fakeAdapter) insert(id string, create assistant.PlannedCreate) {
	f.lessons[id] = entity.Lesson{
		ID:              id,
		StudentID:       create.StudentID,
		Date:            create.Date,
		Time:            create.Time,
		DurationMinutes: create.DurationMinutes,
		AmountCents:     create.AmountCents,
		Completed:       create.Completed,
		Note:            create.Note,
	}
}

func (f *fakeAdapter) LessonsForVerification(ctx context.Context) ([]entity.Lesson, error) {
	var out []entity.Lesson
	for _, l := range f.lessons {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Reference date for planner tests: Tuesday, February 18th 2025. Every
// student's weekly slot is on Tuesday unless stated otherwise.
var planRef = time.Date(2025, time.February, 18, 0, 0, 0, 0, time.UTC)

func tuesdaySlot() entity.ScheduleSlot {
	return entity.ScheduleSlot{Weekday: 2, Time: "4:00 PM", DurationMinutes: 60, AmountCents: 6000}
}

func planRoster() []entity.Student {
	return []entity.Student{
		{ID: "s1", FirstName: "Sarah", LastName: "Chen", Slot: tuesdaySlot()},
		{ID: "s2", FirstName: "Tiffany", LastName: "Lau", Slot: tuesdaySlot()},
		{ID: "s5", FirstName: "Leo", LastName: "Tanaka", Slot: tuesdaySlot()},
		{ID: "s6", FirstName: "Chloe", LastName: "Park", Slot: tuesdaySlot()},
	}
}

func TestPlanAttendanceCreatesRows(t *testing.T) {
	ad := newFakeAdapter(planRoster())
	cmd := &nlp.StructuredCommand{
		Type:       nlp.CommandMarkAttendance,
		StudentIDs: []string{"s1", "s2"},
		Present:    true,
		Date:       "2025-02-18",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	require.Nil(t, clar)
	require.NotNil(t, plan)

	assert.Empty(t, plan.Updates)
	require.Len(t, plan.Creates, 2)
	assert.True(t, plan.Creates[0].Completed)
	assert.Equal(t, "4:00 PM", plan.Creates[0].Time)
	assert.Equal(t, 60, plan.Creates[0].DurationMinutes)
	require.Len(t, plan.Verification.Rows, 2)
}

func TestPlanAttendanceUpdatesExistingRow(t *testing.T) {
	ad := newFakeAdapter(planRoster(), entity.Lesson{
		ID: "l1", StudentID: "s1", Date: "2025-02-18", Time: "4:00 PM",
		DurationMinutes: 60, AmountCents: 6000, Completed: false,
	})
	cmd := &nlp.StructuredCommand{
		Type:       nlp.CommandMarkAttendance,
		StudentIDs: []string{"s1"},
		Present:    true,
		Date:       "2025-02-18",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	require.Nil(t, clar)

	require.Len(t, plan.Updates, 1)
	assert.Empty(t, plan.Creates)
	assert.Equal(t, "l1", plan.Updates[0].LessonID)
	require.NotNil(t, plan.Updates[0].Patch.Completed)
	assert.True(t, *plan.Updates[0].Patch.Completed)
}

// Absence never invents a row; with nothing recorded the planner asks.
func TestPlanNamedAbsenceWithoutRowClarifies(t *testing.T) {
	ad := newFakeAdapter(planRoster())
	cmd := &nlp.StructuredCommand{
		Type:       nlp.CommandUnmarkAttendance,
		StudentIDs: []string{"s1"},
		Present:    false,
		Date:       "2025-02-18",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	assert.Nil(t, plan)
	require.NotNil(t, clar)
	assert.Contains(t, clar.Question, "Sarah Chen")
}

func TestPlanBulkOnEmptyDayIsTerminal(t *testing.T) {
	// 2025-02-23 is a Sunday; every slot is on Tuesday.
	ad := newFakeAdapter(planRoster())
	cmd := &nlp.StructuredCommand{
		Type:        nlp.CommandMarkAttendance,
		AllStudents: true,
		Present:     true,
		Date:        "2025-02-23",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	assert.Nil(t, plan)
	assert.Nil(t, clar)
	assert.ErrorIs(t, err, assistant.ErrNoScheduledStudents)
}

func TestPlanBulkSkipsTerminatedStudents(t *testing.T) {
	roster := planRoster()
	roster[1].TerminatedOn = "2025-01-01"
	ad := newFakeAdapter(roster)
	cmd := &nlp.StructuredCommand{
		Type:        nlp.CommandMarkAttendance,
		AllStudents: true,
		Present:     true,
		Date:        "2025-02-18",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	require.Nil(t, clar)
	assert.Len(t, plan.Creates, 3)
}

// A lesson moved onto a day with no weekly slots still belongs to that day's
// bulk attendance, alongside anyone scheduled there.
func TestPlanBulkIncludesMovedInLesson(t *testing.T) {
	// 2025-02-23 is a Sunday; Leo's row was moved there from Tuesday.
	ad := newFakeAdapter(planRoster(), entity.Lesson{
		ID: "l1", StudentID: "s5", Date: "2025-02-23", Time: "4:00 PM",
		DurationMinutes: 60, AmountCents: 6000, Completed: false,
	})
	cmd := &nlp.StructuredCommand{
		Type:        nlp.CommandMarkAttendance,
		AllStudents: true,
		Present:     true,
		Date:        "2025-02-23",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	require.Nil(t, clar)
	require.NotNil(t, plan)

	assert.Empty(t, plan.Creates)
	require.Len(t, plan.Updates, 1)
	assert.Equal(t, "l1", plan.Updates[0].LessonID)
	require.NotNil(t, plan.Updates[0].Patch.Completed)
	assert.True(t, *plan.Updates[0].Patch.Completed)
}

func TestPlanSetDurationRejectsUnsupportedValue(t *testing.T) {
	ad := newFakeAdapter(planRoster(), entity.Lesson{
		ID: "l1", StudentID: "s6", Date: "2025-02-18", Time: "4:00 PM",
		DurationMinutes: 60, AmountCents: 6000,
	})
	cmd := &nlp.StructuredCommand{
		Type:            nlp.CommandSetDuration,
		StudentIDs:      []string{"s6"},
		DurationMinutes: 25,
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	assert.Nil(t, plan)
	require.NotNil(t, clar)
	assert.Contains(t, clar.Question, "25")

	// Nothing was touched.
	row, _ := ad.LessonByID(context.Background(), "l1")
	assert.Equal(t, 60, row.DurationMinutes)
}

func TestPlanSetDurationRecomputesAmount(t *testing.T) {
	ad := newFakeAdapter(planRoster(), entity.Lesson{
		ID: "l1", StudentID: "s6", Date: "2025-02-18", Time: "4:00 PM",
		DurationMinutes: 60, AmountCents: 6000,
	})
	cmd := &nlp.StructuredCommand{
		Type:            nlp.CommandSetDuration,
		StudentIDs:      []string{"s6"},
		DurationMinutes: 45,
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	require.Nil(t, clar)

	require.Len(t, plan.Updates, 1)
	patch := plan.Updates[0].Patch
	require.NotNil(t, patch.DurationMinutes)
	require.NotNil(t, patch.AmountCents)
	assert.Equal(t, 45, *patch.DurationMinutes)
	assert.Equal(t, 4500, *patch.AmountCents)
}

func TestPlanMoveKeepsRowIdentity(t *testing.T) {
	ad := newFakeAdapter(planRoster(), entity.Lesson{
		ID: "l1", StudentID: "s5", Date: "2025-02-18", Time: "4:00 PM",
		DurationMinutes: 60, AmountCents: 6000,
	})
	cmd := &nlp.StructuredCommand{
		Type:       nlp.CommandMoveLesson,
		StudentIDs: []string{"s5"},
		FromDate:   "2025-02-18",
		ToDate:     "2025-02-20",
		Time:       "5:00 PM",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	require.Nil(t, clar)

	assert.Empty(t, plan.Creates)
	require.Len(t, plan.Updates, 1)
	update := plan.Updates[0]
	assert.Equal(t, "l1", update.LessonID)
	require.NotNil(t, update.Patch.Date)
	assert.Equal(t, "2025-02-20", *update.Patch.Date)
	require.NotNil(t, update.Patch.Time)
	assert.Equal(t, "5:00 PM", *update.Patch.Time)
}

func TestPlanMoveWithoutRowClarifies(t *testing.T) {
	ad := newFakeAdapter(planRoster())
	cmd := &nlp.StructuredCommand{
		Type:       nlp.CommandMoveLesson,
		StudentIDs: []string{"s5"},
		FromDate:   "2025-02-18",
		ToDate:     "2025-02-20",
	}

	plan, clar, _, err := BuildPlan(context.Background(), ad, cmd, planRef)
	require.NoError(t, err)
	assert.Nil(t, plan)
	require.NotNil(t, clar)
	assert.Contains(t, clar.Question, "Leo Tanaka")
}

func TestRecomputeAmount(t *testing.T) {
	assert.Equal(t, 4500, recomputeAmount(6000, 60, 45))
	assert.Equal(t, 12000, recomputeAmount(6000, 60, 120))
	assert.Equal(t, 5000, recomputeAmount(5000, 0, 45))
	// Rounds to the nearest cent.
	assert.Equal(t, 3333, recomputeAmount(5000, 45, 30))
}
