package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
)

// Compile-time check that Store satisfies the provider contract
var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newHabit(title string, created string, weekDays ...int) models.Habit {
	id := uuid.NewString()
	day, err := time.Parse("2006-01-02", created)
	if err != nil {
		panic(err)
	}
	return models.Habit{
		ID:        id,
		Title:     title,
		CreatedAt: day,
		WeekDays:  models.NewWeekDays(id, weekDays),
	}
}

func mustCreate(t *testing.T, store *Store, h models.Habit) models.Habit {
	t.Helper()
	if err := store.CreateHabit(context.Background(), h); err != nil {
		t.Fatalf("failed to create habit %q: %v", h.Title, err)
	}
	return h
}

func habitIDs(habits []models.Habit) []string {
	ids := make([]string, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestInitCreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "habitd.db")
	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file was not created: %v", err)
	}

	current, latest, err := store.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus() failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("expected fully migrated schema, got current=%d latest=%d", current, latest)
	}

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("Load() should fail for a database that was never initialized")
	}
}

func TestLoadAfterInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "habitd.db")
	first := NewStore(dbPath)
	if err := first.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	first.Close()

	second := NewStore(dbPath)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer second.Close()
}

func TestHabitCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	habit := mustCreate(t, store, newHabit("Run", "2024-01-01", 1, 3, 5))

	got, err := store.GetHabit(ctx, habit.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if diff := cmp.Diff(habit.WeekDayValues(), got.WeekDayValues()); diff != "" {
		t.Errorf("week days mismatch (-want +got):\n%s", diff)
	}
	if got.Title != "Run" || !got.CreatedAt.Equal(habit.CreatedAt) {
		t.Errorf("unexpected habit: %+v", got)
	}

	if err := store.UpdateHabit(ctx, habit.ID, "Run fast", []int{0, 6}); err != nil {
		t.Fatalf("UpdateHabit() failed: %v", err)
	}
	got, err = store.GetHabit(ctx, habit.ID)
	if err != nil {
		t.Fatalf("GetHabit() after update failed: %v", err)
	}
	if got.Title != "Run fast" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if diff := cmp.Diff([]int{0, 6}, got.WeekDayValues()); diff != "" {
		t.Errorf("week days not replaced (-want +got):\n%s", diff)
	}

	if err := store.DeleteHabit(ctx, habit.ID); err != nil {
		t.Fatalf("DeleteHabit() failed: %v", err)
	}
	if _, err := store.GetHabit(ctx, habit.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabit() after delete error = %v, want ErrNotFound", err)
	}
}

func TestHabitWithoutWeekDays(t *testing.T) {
	store := setupTestStore(t)

	habit := mustCreate(t, store, newHabit("Someday", "2024-01-01"))
	got, err := store.GetHabit(context.Background(), habit.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.WeekDays == nil || len(got.WeekDays) != 0 {
		t.Errorf("expected empty, non-nil week days, got %#v", got.WeekDays)
	}
}

func TestGetAllHabitsOrderedByCreation(t *testing.T) {
	store := setupTestStore(t)

	newest := mustCreate(t, store, newHabit("Newest", "2024-01-03", 3))
	oldest := mustCreate(t, store, newHabit("Oldest", "2023-12-30", 1, 2))
	middle := mustCreate(t, store, newHabit("Middle", "2024-01-01", 1))

	habits, err := store.GetAllHabits(context.Background())
	if err != nil {
		t.Fatalf("GetAllHabits() failed: %v", err)
	}

	want := []string{oldest.ID, middle.ID, newest.ID}
	if diff := cmp.Diff(want, habitIDs(habits)); diff != "" {
		t.Errorf("habit order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, habits[0].WeekDayValues()); diff != "" {
		t.Errorf("week days of first habit (-want +got):\n%s", diff)
	}
}

func TestGetAllHabitsEmpty(t *testing.T) {
	store := setupTestStore(t)

	habits, err := store.GetAllHabits(context.Background())
	if err != nil {
		t.Fatalf("GetAllHabits() failed: %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("expected empty, non-nil slice, got %#v", habits)
	}
}

func TestUpdateAndDeleteMissingHabit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	missing := uuid.NewString()

	if err := store.UpdateHabit(ctx, missing, "Ghost", []int{1}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateHabit() error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteHabit(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteHabit() error = %v, want ErrNotFound", err)
	}
	if _, err := store.ToggleHabit(ctx, missing, "2024-01-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ToggleHabit() error = %v, want ErrNotFound", err)
	}

	// A failed toggle must not leave a day behind
	if _, err := store.GetDay(ctx, "2024-01-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetDay() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteHabitRemovesAssociations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	habit := mustCreate(t, store, newHabit("Read", "2024-01-01", 1))
	other := mustCreate(t, store, newHabit("Write", "2024-01-01", 1))
	for _, h := range []models.Habit{habit, other} {
		if _, err := store.ToggleHabit(ctx, h.ID, "2024-01-01"); err != nil {
			t.Fatalf("ToggleHabit() failed: %v", err)
		}
	}

	if err := store.DeleteHabit(ctx, habit.ID); err != nil {
		t.Fatalf("DeleteHabit() failed: %v", err)
	}

	var weekDays, links int
	if err := store.GetDB().QueryRow(`SELECT count(*) FROM habit_week_days WHERE habit_id = ?`, habit.ID).Scan(&weekDays); err != nil {
		t.Fatalf("count week days: %v", err)
	}
	if err := store.GetDB().QueryRow(`SELECT count(*) FROM day_habits WHERE habit_id = ?`, habit.ID).Scan(&links); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if weekDays != 0 || links != 0 {
		t.Errorf("expected no rows left, got %d week days and %d links", weekDays, links)
	}

	day, err := store.GetDay(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("GetDay() failed: %v", err)
	}
	if diff := cmp.Diff([]string{other.ID}, day.CompletedHabitIDs); diff != "" {
		t.Errorf("completed habits (-want +got):\n%s", diff)
	}

	orphans, err := store.CountOrphans(ctx)
	if err != nil {
		t.Fatalf("CountOrphans() failed: %v", err)
	}
	if orphans != 0 {
		t.Errorf("expected no orphans, got %d", orphans)
	}
}

func TestGetPossibleHabits(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := mustCreate(t, store, newHabit("Run", "2024-01-01", 1, 3, 5))
	weekend := mustCreate(t, store, newHabit("Rest", "2024-01-01", 0, 6))
	later := mustCreate(t, store, newHabit("Later", "2024-01-03", 1, 3))

	tests := []struct {
		name string
		day  string
		want []string
	}{
		{name: "creation monday", day: "2024-01-01", want: []string{run.ID}},
		{name: "before creation", day: "2023-12-25", want: []string{}},
		{name: "wednesday includes newer habit", day: "2024-01-03", want: []string{run.ID, later.ID}},
		{name: "sunday", day: "2024-01-07", want: []string{weekend.ID}},
		{name: "tuesday has nothing", day: "2024-01-02", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tt.day)
			if err != nil {
				t.Fatalf("bad test date: %v", err)
			}
			habits, err := store.GetPossibleHabits(ctx, tt.day, day.Weekday())
			if err != nil {
				t.Fatalf("GetPossibleHabits() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, habitIDs(habits)); diff != "" {
				t.Errorf("possible habits (-want +got):\n%s", diff)
			}
			for _, h := range habits {
				if !h.IsPossibleOn(day) {
					t.Errorf("habit %q returned but not possible on %s", h.Title, tt.day)
				}
				if len(h.WeekDays) == 0 {
					t.Errorf("habit %q returned without its week days", h.Title)
				}
			}
		})
	}
}

func TestToggleHabitTwiceRestoresState(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	habit := mustCreate(t, store, newHabit("Run", "2024-01-01", 1))

	completed, err := store.ToggleHabit(ctx, habit.ID, "2024-01-01")
	if err != nil {
		t.Fatalf("first ToggleHabit() failed: %v", err)
	}
	if !completed {
		t.Error("expected habit to be completed after first toggle")
	}

	day, err := store.GetDay(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("GetDay() failed: %v", err)
	}
	if diff := cmp.Diff([]string{habit.ID}, day.CompletedHabitIDs); diff != "" {
		t.Errorf("completed habits (-want +got):\n%s", diff)
	}

	completed, err = store.ToggleHabit(ctx, habit.ID, "2024-01-01")
	if err != nil {
		t.Fatalf("second ToggleHabit() failed: %v", err)
	}
	if completed {
		t.Error("expected habit to be uncompleted after second toggle")
	}

	again, err := store.GetDay(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("GetDay() failed: %v", err)
	}
	if len(again.CompletedHabitIDs) != 0 {
		t.Errorf("expected no completed habits, got %v", again.CompletedHabitIDs)
	}
	if again.ID != day.ID {
		t.Errorf("day row was recreated: %s != %s", again.ID, day.ID)
	}
}

func TestConcurrentTogglesShareOneDay(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var habits []models.Habit
	for i := 0; i < 8; i++ {
		habits = append(habits, mustCreate(t, store, newHabit("Habit", "2024-01-01", 1)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(habits))
	for _, h := range habits {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := store.ToggleHabit(ctx, id, "2024-01-01"); err != nil {
				errs <- err
			}
		}(h.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent ToggleHabit() failed: %v", err)
	}

	var days int
	if err := store.GetDB().QueryRow(`SELECT count(*) FROM days`).Scan(&days); err != nil {
		t.Fatalf("count days: %v", err)
	}
	if days != 1 {
		t.Errorf("expected exactly one day row, got %d", days)
	}

	day, err := store.GetDay(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("GetDay() failed: %v", err)
	}
	if len(day.CompletedHabitIDs) != len(habits) {
		t.Errorf("expected %d completed habits, got %d", len(habits), len(day.CompletedHabitIDs))
	}
}

func TestGetSummary(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	summary, err := store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary() on empty store failed: %v", err)
	}
	if summary == nil || len(summary) != 0 {
		t.Fatalf("expected empty, non-nil summary, got %#v", summary)
	}

	run := mustCreate(t, store, newHabit("Run", "2024-01-01", 1, 3))
	read := mustCreate(t, store, newHabit("Read", "2024-01-01", 1))
	mustCreate(t, store, newHabit("Swim", "2024-01-03", 1, 3))
	mustCreate(t, store, newHabit("Rest", "2024-01-01", 0))

	toggles := []struct{ habit, day string }{
		{run.ID, "2024-01-01"},
		{read.ID, "2024-01-01"},
		{run.ID, "2024-01-03"},
		{run.ID, "2024-01-08"},
	}
	for _, tg := range toggles {
		if _, err := store.ToggleHabit(ctx, tg.habit, tg.day); err != nil {
			t.Fatalf("ToggleHabit() failed: %v", err)
		}
	}

	summary, err = store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary() failed: %v", err)
	}

	type row struct {
		Date      string
		Completed int
		Amount    int
	}
	var got []row
	for _, s := range summary {
		if s.ID == "" {
			t.Errorf("summary row for %s has no id", s.Date)
		}
		got = append(got, row{s.Date, s.Completed, s.Amount})
	}

	want := []row{
		// Monday: Run and Read scheduled, Swim not created yet
		{"2024-01-01", 2, 2},
		// Wednesday: Run and Swim scheduled
		{"2024-01-03", 1, 2},
		// Next Monday: Run, Read and Swim scheduled
		{"2024-01-08", 1, 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}
