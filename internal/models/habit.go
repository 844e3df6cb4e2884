package models

import "time"

// Habit is a recurring task scheduled on a fixed set of weekdays
type Habit struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"` // midnight of the creation day
	WeekDays  []HabitWeekDay `json:"weekDays"`
}

// HabitWeekDay schedules a habit on one day of the week (0=Sunday, 6=Saturday)
type HabitWeekDay struct {
	HabitID string `json:"habit_id"`
	WeekDay int    `json:"week_day"`
}

// NewWeekDays builds the associations of habitID for the given weekday indices.
func NewWeekDays(habitID string, weekDays []int) []HabitWeekDay {
	out := make([]HabitWeekDay, 0, len(weekDays))
	for _, wd := range weekDays {
		out = append(out, HabitWeekDay{HabitID: habitID, WeekDay: wd})
	}
	return out
}

// WeekDayValues returns the weekday indices the habit is scheduled on.
func (h Habit) WeekDayValues() []int {
	out := make([]int, 0, len(h.WeekDays))
	for _, wd := range h.WeekDays {
		out = append(out, wd.WeekDay)
	}
	return out
}

// IsPossibleOn reports whether the habit already existed on day and is scheduled
// on day's weekday. day is expected to be midnight in the habit's reference timezone.
func (h Habit) IsPossibleOn(day time.Time) bool {
	if h.CreatedAt.After(day) {
		return false
	}
	for _, wd := range h.WeekDays {
		if time.Weekday(wd.WeekDay) == day.Weekday() {
			return true
		}
	}
	return false
}

// Day is a calendar date on which completion activity happened
type Day struct {
	ID                string   `json:"id"`
	Date              string   `json:"date"` // YYYY-MM-DD format
	CompletedHabitIDs []string `json:"completed_habit_ids"`
}

// DaySummary aggregates completion progress for one Day
type DaySummary struct {
	ID        string `json:"id"`
	Date      string `json:"date"` // YYYY-MM-DD format
	Completed int    `json:"completed"`
	Amount    int    `json:"amount"`
}
