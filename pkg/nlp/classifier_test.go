package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNamedAttendance(t *testing.T) {
	out := Classify("Sarah and Tiffany came today", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandMarkAttendance, cmd.Type)
	assert.Equal(t, []string{"s1", "s2"}, cmd.StudentIDs)
	assert.True(t, cmd.Present)
	assert.Equal(t, "2025-02-18", cmd.Date)
}

func TestClassifyNamedAbsence(t *testing.T) {
	out := Classify("Emma Brooks didn't come yesterday", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandUnmarkAttendance, cmd.Type)
	assert.Equal(t, []string{"s3"}, cmd.StudentIDs)
	assert.False(t, cmd.Present)
	assert.Equal(t, "2025-02-17", cmd.Date)
}

func TestClassifyAmbiguousName(t *testing.T) {
	out := Classify("Emma came today", ref, testRoster())

	require.NotNil(t, out.Clarification)
	assert.Len(t, out.Clarification.Options, 2)
	assert.Contains(t, out.Clarification.Options, "Emma Brooks")
	assert.Contains(t, out.Clarification.Options, "Emma Klein")
}

func TestClassifyUnknownName(t *testing.T) {
	out := Classify("Bartholomew came today", ref, testRoster())

	require.NotNil(t, out.Clarification)
	assert.Contains(t, out.Clarification.Question, "bartholomew")
}

// One bad name aborts the whole list; the resolvable one is not committed.
func TestClassifyAllOrNothing(t *testing.T) {
	out := Classify("Sarah and Emma came today", ref, testRoster())

	require.Nil(t, out.Command)
	require.NotNil(t, out.Clarification)
}

func TestClassifyBulkAttendance(t *testing.T) {
	out := Classify("Everyone attended today", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandMarkAttendance, cmd.Type)
	assert.True(t, cmd.AllStudents)
	assert.True(t, cmd.Present)
}

func TestClassifyNoOneWithVerbIsBulkAbsence(t *testing.T) {
	out := Classify("No one came today", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandUnmarkAttendance, cmd.Type)
	assert.True(t, cmd.AllStudents)
	assert.False(t, cmd.Present)
}

// Bare "no one" has no verb to anchor it; mass absence needs confirmation.
func TestClassifyNoOneAloneClarifies(t *testing.T) {
	out := Classify("no one", ref, testRoster())

	require.NotNil(t, out.Clarification)
	assert.Contains(t, out.Clarification.Options, "Mark everyone absent")
}

func TestClassifySetDuration(t *testing.T) {
	out := Classify("Change Chloe's duration to 45 minutes", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandSetDuration, cmd.Type)
	assert.Equal(t, []string{"s6"}, cmd.StudentIDs)
	assert.Equal(t, 45, cmd.DurationMinutes)
}

// The classifier passes unsupported durations through; the planner owns the
// allow-list and clarifies there.
func TestClassifySetDurationUnsupportedValuePassesThrough(t *testing.T) {
	out := Classify("Change Chloe's duration to 25 minutes", ref, testRoster())

	require.NotNil(t, out.Command)
	assert.Equal(t, 25, out.Command.DurationMinutes)
}

func TestClassifySetTime(t *testing.T) {
	out := Classify("Set Leo's time to 5pm", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandSetTime, cmd.Type)
	assert.Equal(t, []string{"s5"}, cmd.StudentIDs)
	assert.Equal(t, "5:00 PM", cmd.Time)
}

func TestClassifySetRate(t *testing.T) {
	out := Classify("Change Mia's rate to $80", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandSetRate, cmd.Type)
	assert.Equal(t, []string{"s7"}, cmd.StudentIDs)
	assert.Equal(t, 8000, cmd.RateCents)
}

func TestClassifyRecurringRateClarifies(t *testing.T) {
	out := Classify("Change Mia's rate to $80 going forward", ref, testRoster())

	require.NotNil(t, out.Clarification)
	assert.Contains(t, out.Clarification.Question, "Recurring")
}

func TestClassifyMoveLesson(t *testing.T) {
	out := Classify("Move Leo's lesson from February 18 to February 20 at 5pm", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandMoveLesson, cmd.Type)
	assert.Equal(t, []string{"s5"}, cmd.StudentIDs)
	assert.Equal(t, "2025-02-18", cmd.FromDate)
	assert.Equal(t, "2025-02-20", cmd.ToDate)
	assert.Equal(t, "5:00 PM", cmd.Time)
}

// "to 2/21" is a date, not a two o'clock lesson.
func TestClassifyMoveSlashDateCarriesNoTime(t *testing.T) {
	out := Classify("Move Leo's lesson to 2/21", ref, testRoster())

	require.NotNil(t, out.Command)
	cmd := out.Command
	assert.Equal(t, CommandMoveLesson, cmd.Type)
	assert.Equal(t, []string{"s5"}, cmd.StudentIDs)
	assert.Equal(t, "2025-02-21", cmd.ToDate)
	assert.Empty(t, cmd.Time)
}

// A bare weekday in a move is the one place weekday ambiguity surfaces.
func TestClassifyMoveBareWeekdayClarifies(t *testing.T) {
	out := Classify("Move Leo's lesson to Friday", ref, testRoster())

	require.NotNil(t, out.Clarification)
	require.Len(t, out.Clarification.Options, 2)
	assert.Contains(t, out.Clarification.Options[0], "2025-02-14")
	assert.Contains(t, out.Clarification.Options[1], "2025-02-21")
}

func TestClassifyMoveInvalidTimeClarifies(t *testing.T) {
	out := Classify("Move Leo's lesson to next friday at 25:00", ref, testRoster())

	require.NotNil(t, out.Clarification)
	assert.Contains(t, out.Clarification.Question, "time")
}

func TestClassifyHelp(t *testing.T) {
	out := Classify("help", ref, testRoster())

	require.NotNil(t, out.Command)
	assert.Equal(t, CommandHelp, out.Command.Type)
}

func TestClassifyEmptyClarifies(t *testing.T) {
	out := Classify("   ", ref, testRoster())

	require.NotNil(t, out.Clarification)
}

func TestClassifyGibberishClarifies(t *testing.T) {
	out := Classify("the quick brown fox", ref, testRoster())

	require.NotNil(t, out.Clarification)
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		out := Classify("Sarah and Tiffany came today", ref, testRoster())
		require.NotNil(t, out.Command)
		assert.Equal(t, []string{"s1", "s2"}, out.Command.StudentIDs)
	}
}
