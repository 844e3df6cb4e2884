package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
)

func (s *Store) GetPossibleHabits(ctx context.Context, day string, weekday time.Weekday) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, selectHabitsWithWeekDays+`
		WHERE substr(h.created_at, 1, 10) <= ?
		  AND EXISTS (
			SELECT 1 FROM habit_week_days x
			WHERE x.habit_id = h.id AND x.week_day = ?
		  )`+orderHabits, day, int(weekday))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return storage.ScanHabitRows(rows)
}

func (s *Store) GetDay(ctx context.Context, day string) (models.Day, error) {
	d := models.Day{CompletedHabitIDs: []string{}}
	err := s.db.QueryRowContext(ctx, `SELECT id, date FROM days WHERE date = ?`, day).Scan(&d.ID, &d.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Day{}, fmt.Errorf("day %s: %w", day, storage.ErrNotFound)
	}
	if err != nil {
		return models.Day{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT habit_id FROM day_habits WHERE day_id = ? ORDER BY habit_id`, d.ID)
	if err != nil {
		return models.Day{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var habitID string
		if err := rows.Scan(&habitID); err != nil {
			return models.Day{}, err
		}
		d.CompletedHabitIDs = append(d.CompletedHabitIDs, habitID)
	}
	return d, rows.Err()
}

func (s *Store) ToggleHabit(ctx context.Context, habitID, day string) (bool, error) {
	var completed bool
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := habitExists(ctx, tx, habitID); err != nil {
			return err
		}

		// Insert-or-fetch: a concurrent request may have created the day already
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO days (id, date) VALUES (?, ?)
			ON CONFLICT(date) DO NOTHING`, uuid.NewString(), day); err != nil {
			return fmt.Errorf("failed to create day: %w", err)
		}
		var dayID string
		if err := tx.QueryRowContext(ctx, `SELECT id FROM days WHERE date = ?`, day).Scan(&dayID); err != nil {
			return fmt.Errorf("failed to fetch day: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM day_habits WHERE day_id = ? AND habit_id = ?`, dayID, habitID)
		if err != nil {
			return fmt.Errorf("failed to remove completion: %w", err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if removed > 0 {
			completed = false
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO day_habits (id, day_id, habit_id) VALUES (?, ?, ?)
			ON CONFLICT(day_id, habit_id) DO NOTHING`, uuid.NewString(), dayID, habitID); err != nil {
			return fmt.Errorf("failed to add completion: %w", err)
		}
		completed = true
		return nil
	})
	return completed, err
}

// summaryQuery counts, per day, the completed habits and the habits that were
// possible on that day. Weekdays use Sunday=0, matching time.Weekday.
const summaryQuery = `
	SELECT
		d.id,
		d.date,
		(
			SELECT count(DISTINCT dh.habit_id)
			FROM day_habits dh
			WHERE dh.day_id = d.id
		) AS completed,
		(
			SELECT count(DISTINCT w.habit_id)
			FROM habit_week_days w
			JOIN habits h ON h.id = w.habit_id
			WHERE w.week_day = CAST(strftime('%w', d.date) AS INTEGER)
			  AND substr(h.created_at, 1, 10) <= d.date
		) AS amount
	FROM days d
	ORDER BY d.date`

func (s *Store) GetSummary(ctx context.Context) ([]models.DaySummary, error) {
	rows, err := s.db.QueryContext(ctx, summaryQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := []models.DaySummary{}
	for rows.Next() {
		var ds models.DaySummary
		if err := rows.Scan(&ds.ID, &ds.Date, &ds.Completed, &ds.Amount); err != nil {
			return nil, err
		}
		summary = append(summary, ds)
	}
	return summary, rows.Err()
}

func (s *Store) CountOrphans(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM habit_week_days w
			 WHERE NOT EXISTS (SELECT 1 FROM habits h WHERE h.id = w.habit_id))
		  + (SELECT count(*) FROM day_habits dh
			 WHERE NOT EXISTS (SELECT 1 FROM habits h WHERE h.id = dh.habit_id)
			    OR NOT EXISTS (SELECT 1 FROM days d WHERE d.id = dh.day_id))`).Scan(&n)
	return n, err
}
