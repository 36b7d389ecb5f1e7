package assistantService

import (
	"context"
	"io"
	"testing"

	"TutorDesk/internal/api/assistant"
	"TutorDesk/internal/entity"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestExecutePlanAppliesAndVerifies(t *testing.T) {
	ad := newFakeAdapter(planRoster(), entity.Lesson{
		ID: "l1", StudentID: "s1", Date: "2025-02-18", Time: "4:00 PM",
		DurationMinutes: 60, AmountCents: 6000, Completed: false,
	})

	completed := true
	patch := assistant.LessonPatch{Completed: &completed}
	plan := &assistant.CommandPlan{
		Updates: []assistant.PlannedUpdate{{LessonID: "l1", Patch: patch}},
		Creates: []assistant.PlannedCreate{{
			StudentID: "s2", Date: "2025-02-18", Time: "4:00 PM",
			DurationMinutes: 60, AmountCents: 6000, Completed: true,
		}},
	}
	plan.Verification.ExpectFields("l1", patch)
	plan.Verification.Rows = append(plan.Verification.Rows, assistant.RowExpectation{
		StudentID: "s2", Date: "2025-02-18", Completed: true,
	})

	err := ExecutePlan(context.Background(), testLogger(), ad, plan)
	require.NoError(t, err)

	updated, err := ad.LessonByID(context.Background(), "l1")
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	created, err := ad.LessonForStudentOnDate(context.Background(), "s2", "2025-02-18")
	require.NoError(t, err)
	assert.True(t, created.Completed)
}

func TestExecutePlanEmptyIsNothingToDo(t *testing.T) {
	ad := newFakeAdapter(planRoster())

	err := ExecutePlan(context.Background(), testLogger(), ad, &assistant.CommandPlan{})
	assert.ErrorIs(t, err, assistant.ErrNothingToDo)
}

// A store that acknowledges writes without persisting them must be caught by
// the read-back, not reported as success.
func TestExecutePlanDroppedWriteFailsVerification(t *testing.T) {
	ad := newFakeAdapter(planRoster(), entity.Lesson{
		ID: "l1", StudentID: "s1", Date: "2025-02-18", Time: "4:00 PM",
		DurationMinutes: 60, AmountCents: 6000, Completed: false,
	})
	ad.dropWrites = true

	completed := true
	patch := assistant.LessonPatch{Completed: &completed}
	plan := &assistant.CommandPlan{
		Updates: []assistant.PlannedUpdate{{LessonID: "l1", Patch: patch}},
	}
	plan.Verification.ExpectFields("l1", patch)

	err := ExecutePlan(context.Background(), testLogger(), ad, plan)
	assert.ErrorIs(t, err, assistant.ErrVerificationFailed)
}

func TestExecutePlanDroppedCreateFailsVerification(t *testing.T) {
	ad := newFakeAdapter(planRoster())
	ad.dropWrites = true

	plan := &assistant.CommandPlan{
		Creates: []assistant.PlannedCreate{{
			StudentID: "s1", Date: "2025-02-18", Time: "4:00 PM",
			DurationMinutes: 60, AmountCents: 6000, Completed: true,
		}},
	}
	plan.Verification.Rows = append(plan.Verification.Rows, assistant.RowExpectation{
		StudentID: "s1", Date: "2025-02-18", Completed: true,
	})

	err := ExecutePlan(context.Background(), testLogger(), ad, plan)
	assert.ErrorIs(t, err, assistant.ErrVerificationFailed)
}

// A create that lands twice leaves two rows for one (student, date); the
// read-back must refuse to confirm that.
func TestExecutePlanDuplicateRowFailsVerification(t *testing.T) {
	ad := newFakeAdapter(planRoster())
	ad.duplicateCreates = true

	plan := &assistant.CommandPlan{
		Creates: []assistant.PlannedCreate{{
			StudentID: "s1", Date: "2025-02-18", Time: "4:00 PM",
			DurationMinutes: 60, AmountCents: 6000, Completed: true,
		}},
	}
	plan.Verification.Rows = append(plan.Verification.Rows, assistant.RowExpectation{
		StudentID: "s1", Date: "2025-02-18", Completed: true,
	})

	err := ExecutePlan(context.Background(), testLogger(), ad, plan)
	assert.ErrorIs(t, err, assistant.ErrVerificationFailed)
}

func TestExecutePlanMissingRowFailsExecution(t *testing.T) {
	ad := newFakeAdapter(planRoster())

	completed := true
	plan := &assistant.CommandPlan{
		Updates: []assistant.PlannedUpdate{{
			LessonID: "ghost",
			Patch:    assistant.LessonPatch{Completed: &completed},
		}},
	}

	err := ExecutePlan(context.Background(), testLogger(), ad, plan)
	assert.ErrorIs(t, err, assistant.ErrExecutionFailed)
}
