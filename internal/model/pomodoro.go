package model

import "time"

const (
	StatusStarted   = "STARTED"
	StatusPaused    = "PAUSED"
	StatusCompleted = "COMPLETED"
)

const (
	DefaultStudyDurationSeconds = 25 * 60
	MinStudyDurationSeconds     = 5 * 60
	MaxStudyDurationSeconds     = 180 * 60

	// CompletionGraceSeconds lets a client complete a session slightly before
	// its nominal end to tolerate network latency.
	CompletionGraceSeconds = 60
)

type PomodoroSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	DurationSeconds int        `json:"durationSeconds"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Active reports whether the session still occupies the user's single
// active-session slot.
func (s *PomodoroSession) Active() bool {
	return s.Status != StatusCompleted
}

type UserSettings struct {
	UserID            string    `json:"userId"`
	PomodoroStudyTime int       `json:"pomodoroStudyTime"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
