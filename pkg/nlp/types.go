package nlp

import (
	"TutorDesk/internal/entity"
)

type CommandType string

const (
	CommandHelp             CommandType = "help"
	CommandMarkAttendance   CommandType = "mark_attendance"
	CommandUnmarkAttendance CommandType = "unmark_attendance"
	CommandSetDuration      CommandType = "set_duration"
	CommandSetTime          CommandType = "set_time"
	CommandSetRate          CommandType = "set_rate"
	CommandMoveLesson       CommandType = "move_lesson"
)

// StructuredCommand is the validated, unambiguous form the planner consumes.
// Exactly one command type is set; only the fields relevant to that type are
// populated. The struct is checked with the schema validator before planning.
type StructuredCommand struct {
	Type        CommandType `json:"type" validate:"required,oneof=help mark_attendance unmark_attendance set_duration set_time set_rate move_lesson"`
	AllStudents bool        `json:"all_students,omitempty"`
	StudentIDs  []string    `json:"student_ids,omitempty" validate:"omitempty,dive,required"`
	Present     bool        `json:"present,omitempty"`

	Date     string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FromDate string `json:"from_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ToDate   string `json:"to_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=480"`
	RateCents       int    `json:"rate_cents,omitempty" validate:"omitempty,min=1"`
}

// Clarification is a question back to the user, optionally with a finite set
// of choices. It is a normal pipeline outcome, not an error.
type Clarification struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Outcome is the classifier result: exactly one of Command or Clarification
// is non-nil.
type Outcome struct {
	Command       *StructuredCommand `json:"command,omitempty"`
	Clarification *Clarification     `json:"clarification,omitempty"`
}

type MatchStrategy string

const (
	MatchExact    MatchStrategy = "exact"
	MatchContains MatchStrategy = "contains"
	MatchFuzzy    MatchStrategy = "fuzzy"
)

// NameMatch is one scored candidate for a name fragment. Never persisted.
type NameMatch struct {
	Student  entity.Student `json:"student"`
	Score    float64        `json:"score"`
	Strategy MatchStrategy  `json:"strategy"`
}

type ResolutionOutcome string

const (
	ResolutionResolved  ResolutionOutcome = "resolved"
	ResolutionAmbiguous ResolutionOutcome = "ambiguous"
	ResolutionMissing   ResolutionOutcome = "missing"
)

// Resolution maps one input fragment to exactly one outcome. For ambiguous
// fragments up to five scored candidates are kept for clarification display.
type Resolution struct {
	Fragment   string            `json:"fragment"`
	Outcome    ResolutionOutcome `json:"outcome"`
	Match      *NameMatch        `json:"match,omitempty"`
	Candidates []NameMatch       `json:"candidates,omitempty"`
}
