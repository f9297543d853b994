package tuition

import (
	"context"
	"time"
)

// Run is a persisted calculation. Fingerprint identifies the input snapshot,
// so two runs with the same fingerprint carry identical results.
type Run struct {
	ID          string    `json:"id"`
	Month       string    `json:"month"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	Result      *Result   `json:"result"`
}

// Store persists configuration and calculation runs.
//
// Get methods return generic.ErrNotFound for missing records. Lists are
// ordered by name, then ID. SetTrainingWeekdays applies all assignments or
// none.
type Store interface {
	SnapshotSource

	SaveLevel(ctx context.Context, level LevelConfig) error
	GetLevel(ctx context.Context, name string) (*LevelConfig, error)
	ListLevels(ctx context.Context) ([]LevelConfig, error)
	DeleteLevel(ctx context.Context, name string) error

	SaveParticipant(ctx context.Context, p Participant) error
	GetParticipant(ctx context.Context, id string) (*Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	SetTrainingWeekdays(ctx context.Context, weekdays map[string][]int) error

	// GetMonthException returns an empty exception when none is stored.
	SaveMonthException(ctx context.Context, e MonthException) error
	GetMonthException(ctx context.Context, month string) (MonthException, error)

	SaveRun(ctx context.Context, run Run) error
	// ListRuns returns runs newest first. An empty month lists every run.
	ListRuns(ctx context.Context, month string) ([]Run, error)

	Reset(ctx context.Context) error
}
