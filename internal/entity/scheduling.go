package entity

import (
	"errors"
	"time"
)

// ErrLessonNotFound marks a lesson lookup that matched no row. Callers
// distinguish it from transport errors because a missing row is often a
// legitimate state, not a failure.
var ErrLessonNotFound = errors.New("lesson not found")

// ScheduleSlot is one weekly recurring lesson slot. Weekday follows
// time.Weekday numbering (0 = Sunday).
type ScheduleSlot struct {
	Weekday         int    `json:"weekday"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	AmountCents     int    `json:"amount_cents"`
}

// ScheduleChange is a future-dated replacement for a student's weekly slots.
// It applies from EffectiveOn (inclusive) onward.
type ScheduleChange struct {
	EffectiveOn string         `json:"effective_on"`
	Slots       []ScheduleSlot `json:"slots"`
}

type Student struct {
	ID              string          `json:"id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Slot            ScheduleSlot    `json:"slot"`
	AdditionalSlots []ScheduleSlot  `json:"additional_slots,omitempty"`
	ScheduleChange  *ScheduleChange `json:"schedule_change,omitempty"`
	TerminatedOn    string          `json:"terminated_on,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// ActiveOn reports whether the student is still visible in scheduling views
// on the given ISO date. A termination date ends visibility from that date
// forward.
func (s Student) ActiveOn(date string) bool {
	return s.TerminatedOn == "" || date < s.TerminatedOn
}

// SlotsOn returns the weekly slots in effect on the given ISO date,
// honoring a schedule-change override once its effective date is reached.
func (s Student) SlotsOn(date string) []ScheduleSlot {
	if s.ScheduleChange != nil && date >= s.ScheduleChange.EffectiveOn {
		return s.ScheduleChange.Slots
	}
	slots := make([]ScheduleSlot, 0, 1+len(s.AdditionalSlots))
	slots = append(slots, s.Slot)
	slots = append(slots, s.AdditionalSlots...)
	return slots
}

// Lesson is a single dated occurrence for a student. Rows are created lazily:
// a scheduled slot with nothing recorded has no lesson row.
type Lesson struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"duration_minutes"`
	AmountCents     int       `json:"amount_cents"`
	Completed       bool      `json:"completed"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AssistantCommand struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Transcript string    `json:"transcript"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Plan       string    `json:"plan,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
