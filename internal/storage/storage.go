package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitd/internal/models"
)

// ErrNotFound is returned when an operation addresses a habit or day that does not exist
var ErrNotFound = errors.New("not found")

// WithTx runs fn inside a SQL transaction.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// ScanHabitRows folds rows of (id, title, created_at, week_day) into habits.
// Rows of one habit must be adjacent; week_day may be NULL for habits without
// any scheduled day. The order of first appearance is preserved.
func ScanHabitRows(rows *sql.Rows) ([]models.Habit, error) {
	habits := []models.Habit{}
	for rows.Next() {
		var id, title, createdAt string
		var weekDay sql.NullInt64
		if err := rows.Scan(&id, &title, &createdAt, &weekDay); err != nil {
			return nil, err
		}

		if n := len(habits); n == 0 || habits[n-1].ID != id {
			created, err := time.Parse(time.RFC3339, createdAt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at for habit %s: %w", id, err)
			}
			habits = append(habits, models.Habit{
				ID:        id,
				Title:     title,
				CreatedAt: created,
				WeekDays:  []models.HabitWeekDay{},
			})
		}

		if weekDay.Valid {
			h := &habits[len(habits)-1]
			h.WeekDays = append(h.WeekDays, models.HabitWeekDay{HabitID: id, WeekDay: int(weekDay.Int64)})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return habits, nil
}
