package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/internal/utils"
	"github.com/julianstephens/habitd/internal/validation"
)

type habitRequest struct {
	Title    string `json:"title" binding:"required"`
	WeekDays []int  `json:"weekDays" binding:"required,dive,min=0,max=6"`
}

type habitURI struct {
	ID string `uri:"id" binding:"required"`
}

type dayQuery struct {
	Date string `form:"date" binding:"required"`
}

// bindHabit reads and normalizes a habit body.
func bindHabit(c *gin.Context) (string, []int, bool) {
	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return "", nil, false
	}
	title, err := validation.Title(req.Title)
	if err != nil {
		badRequest(c, err)
		return "", nil, false
	}
	weekDays, err := validation.WeekDays(req.WeekDays)
	if err != nil {
		badRequest(c, err)
		return "", nil, false
	}
	return title, weekDays, true
}

func bindHabitID(c *gin.Context) (string, bool) {
	var uri habitURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return "", false
	}
	id, err := validation.HabitID(uri.ID)
	if err != nil {
		badRequest(c, err)
		return "", false
	}
	return id, true
}

func (s *Server) today() string {
	return utils.FormatDay(s.now(), s.loc)
}

// inLocation rewrites habit timestamps into the server timezone.
func (s *Server) inLocation(habits []models.Habit) []models.Habit {
	for i := range habits {
		habits[i].CreatedAt = habits[i].CreatedAt.In(s.loc)
	}
	return habits
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: constants.MsgHello})
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		logger.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleCreateHabit(c *gin.Context) {
	title, weekDays, ok := bindHabit(c)
	if !ok {
		return
	}

	id := uuid.NewString()
	habit := models.Habit{
		ID:        id,
		Title:     title,
		CreatedAt: utils.StartOfDay(s.now(), s.loc),
		WeekDays:  models.NewWeekDays(id, weekDays),
	}
	if err := s.store.CreateHabit(c.Request.Context(), habit); err != nil {
		storeError(c, err)
		return
	}

	logger.Debug("Habit created", "id", id, "weekDays", weekDays)
	c.JSON(http.StatusCreated, messageResponse{Message: constants.MsgHabitCreated})
}

func (s *Server) handleListHabits(c *gin.Context) {
	habits, err := s.store.GetAllHabits(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.inLocation(habits))
}

func (s *Server) handleUpdateHabit(c *gin.Context) {
	id, ok := bindHabitID(c)
	if !ok {
		return
	}
	title, weekDays, ok := bindHabit(c)
	if !ok {
		return
	}

	if err := s.store.UpdateHabit(c.Request.Context(), id, title, weekDays); err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, habitUpdatedResponse{
		Message: constants.MsgHabitUpdated,
		Habit:   updatedHabit{ID: id, Title: title, WeekDays: weekDays},
	})
}

func (s *Server) handleDeleteHabit(c *gin.Context) {
	id, ok := bindHabitID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteHabit(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: constants.MsgHabitDeleted})
}

func (s *Server) handleGetDay(c *gin.Context) {
	var q dayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	date, err := validation.Date(q.Date, s.loc)
	if err != nil {
		badRequest(c, err)
		return
	}

	midnight := utils.StartOfDay(date, s.loc)
	day := utils.FormatDay(midnight, s.loc)
	ctx := c.Request.Context()

	possible, err := s.store.GetPossibleHabits(ctx, day, midnight.Weekday())
	if err != nil {
		storeError(c, err)
		return
	}

	completed := []string{}
	record, err := s.store.GetDay(ctx, day)
	switch {
	case err == nil:
		completed = record.CompletedHabitIDs
	case errors.Is(err, storage.ErrNotFound):
		// no completions recorded yet
	default:
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dayResponse{
		PossibleHabits:  s.inLocation(possible),
		CompletedHabits: completed,
	})
}

func (s *Server) handleToggleHabit(c *gin.Context) {
	id, ok := bindHabitID(c)
	if !ok {
		return
	}

	completed, err := s.store.ToggleHabit(c.Request.Context(), id, s.today())
	if err != nil {
		storeError(c, err)
		return
	}

	logger.Debug("Habit toggled", "id", id, "completed", completed)
	c.JSON(http.StatusOK, messageResponse{Message: constants.MsgHabitToggled})
}

func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.store.GetSummary(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}

	out := make([]summaryEntry, 0, len(summary))
	for _, d := range summary {
		date := d.Date
		if t, err := utils.ParseDayInLocation(d.Date, s.loc); err == nil {
			date = t.Format(time.RFC3339)
		}
		out = append(out, summaryEntry{ID: d.ID, Date: date, Completed: d.Completed, Amount: d.Amount})
	}
	c.JSON(http.StatusOK, out)
}
