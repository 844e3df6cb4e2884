package storage

import (
	"context"
	"time"

	"github.com/julianstephens/habitd/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping(ctx context.Context) error

	// Schema
	// SchemaStatus returns the applied schema version and the newest version
	// shipped with the binary.
	SchemaStatus() (current, latest int, err error)

	// Habits
	CreateHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetAllHabits(ctx context.Context) ([]models.Habit, error)
	// UpdateHabit replaces the title and the whole weekday set of a habit.
	UpdateHabit(ctx context.Context, id, title string, weekDays []int) error
	DeleteHabit(ctx context.Context, id string) error

	// Days
	// GetPossibleHabits returns habits created on or before day (YYYY-MM-DD)
	// that are scheduled on weekday.
	GetPossibleHabits(ctx context.Context, day string, weekday time.Weekday) ([]models.Habit, error)
	GetDay(ctx context.Context, day string) (models.Day, error)
	// ToggleHabit flips the completion of habitID on day and reports whether
	// the habit is completed afterwards.
	ToggleHabit(ctx context.Context, habitID, day string) (bool, error)
	GetSummary(ctx context.Context) ([]models.DaySummary, error)

	// Integrity
	CountOrphans(ctx context.Context) (int, error)

	// Utils
	GetConfigPath() string
}
