package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
)

const selectHabitsWithWeekDays = `
	SELECT h.id, h.title, h.created_at, w.week_day
	FROM habits h
	LEFT JOIN habit_week_days w ON w.habit_id = h.id`

const orderHabits = `
	ORDER BY h.created_at, h.title, h.id, w.week_day`

func (s *Store) CreateHabit(ctx context.Context, habit models.Habit) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO habits (id, title, created_at) VALUES (?, ?, ?)`,
			habit.ID, habit.Title, habit.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert habit: %w", err)
		}
		return insertWeekDays(ctx, tx, habit.ID, habit.WeekDayValues())
	})
}

func insertWeekDays(ctx context.Context, tx *sql.Tx, habitID string, weekDays []int) error {
	for _, wd := range weekDays {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO habit_week_days (habit_id, week_day) VALUES (?, ?)
			ON CONFLICT(habit_id, week_day) DO NOTHING`,
			habitID, wd)
		if err != nil {
			return fmt.Errorf("failed to insert week day %d: %w", wd, err)
		}
	}
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, selectHabitsWithWeekDays+`
		WHERE h.id = ?`+orderHabits, id)
	if err != nil {
		return models.Habit{}, err
	}
	defer rows.Close()

	habits, err := storage.ScanHabitRows(rows)
	if err != nil {
		return models.Habit{}, err
	}
	if len(habits) == 0 {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return habits[0], nil
}

func (s *Store) GetAllHabits(ctx context.Context) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, selectHabitsWithWeekDays+orderHabits)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return storage.ScanHabitRows(rows)
}

func (s *Store) UpdateHabit(ctx context.Context, id, title string, weekDays []int) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE habits SET title = ? WHERE id = ?`, title, id)
		if err != nil {
			return fmt.Errorf("failed to update habit: %w", err)
		}
		if err := requireAffected(result, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM habit_week_days WHERE habit_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear week days: %w", err)
		}
		return insertWeekDays(ctx, tx, id, weekDays)
	})
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM habit_week_days WHERE habit_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete week days: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM day_habits WHERE habit_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete completions: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		return requireAffected(result, id)
	})
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func habitExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM habits WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return err
}
