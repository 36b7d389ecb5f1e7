package assistant

import (
	"time"

	"TutorDesk/pkg/nlp"
)

const (
	StatusSuccess            = "success"
	StatusNeedsClarification = "needs_clarification"
	StatusError              = "error"
)

type CommandRequest struct {
	Transcript   string `json:"transcript" validate:"max=500"`
	SelectedDate string `json:"selected_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Timezone     string `json:"timezone,omitempty"`
	DryRun       bool   `json:"dry_run,omitempty"`
	Debug        bool   `json:"debug,omitempty"`
}

type CommandResult struct {
	Status               string        `json:"status"`
	Message              string        `json:"message"`
	Plan                 *CommandPlan  `json:"plan,omitempty"`
	ClarificationOptions []string      `json:"clarification_options,omitempty"`
	Debug                *CommandDebug `json:"debug,omitempty"`
}

// CommandDebug exposes the interpreter's intermediate state when the caller
// asks for it.
type CommandDebug struct {
	Command       *nlp.StructuredCommand `json:"command,omitempty"`
	ReferenceDate string                 `json:"reference_date"`
}

type CommandHistoryEntry struct {
	ID         string    `json:"id"`
	Transcript string    `json:"transcript"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommandHistoryResponse struct {
	Commands []CommandHistoryEntry `json:"commands"`
	Total    int                   `json:"total"`
}

type DayScheduleResponse struct {
	Date    string            `json:"date"`
	Lessons []ScheduledLesson `json:"lessons"`
}
