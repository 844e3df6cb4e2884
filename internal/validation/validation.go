// Package validation normalizes client input before it reaches the store.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/utils"
)

// ErrInvalid marks every error produced by this package
var ErrInvalid = errors.New("invalid input")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// HabitID checks that id is a UUID and returns its canonical lowercase form.
func HabitID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", invalidf("id %q is not a valid uuid", id)
	}
	return parsed.String(), nil
}

// Title trims surrounding whitespace and enforces a non-empty, bounded title.
func Title(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalidf("title cannot be empty")
	}
	if n := utf8.RuneCountInString(title); n > constants.MaxTitleLength {
		return "", invalidf("title is %d characters, maximum is %d", n, constants.MaxTitleLength)
	}
	return title, nil
}

// WeekDays checks that every value is in [0,6] (Sunday=0) and returns the
// distinct values in ascending order.
func WeekDays(days []int) ([]int, error) {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < constants.MinWeekDay || d > constants.MaxWeekDay {
			return nil, invalidf("week day %d out of range %d-%d", d, constants.MinWeekDay, constants.MaxWeekDay)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Date parses a day or timestamp query value in loc.
func Date(value string, loc *time.Location) (time.Time, error) {
	t, err := utils.ParseDateTime(value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return t, nil
}
