package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitd/internal/constants"
	"github.com/julianstephens/habitd/internal/models"
	"github.com/julianstephens/habitd/internal/storage"
)

const msgInvalidBody = "invalid request body"

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type habitUpdatedResponse struct {
	Message string       `json:"message"`
	Habit   updatedHabit `json:"habit"`
}

type updatedHabit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	WeekDays []int  `json:"weekDays"`
}

type dayResponse struct {
	PossibleHabits  []models.Habit `json:"possibleHabits"`
	CompletedHabits []string       `json:"completedHabits"`
}

type summaryEntry struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Amount    int    `json:"amount"`
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, messageResponse{Message: describeInvalid(err)})
}

// storeError maps a store failure onto a response. Only ErrNotFound is
// reported to the client; anything else is logged and hidden.
func storeError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, messageResponse{Message: constants.MsgHabitNotFound})
		return
	}
	c.JSON(http.StatusInternalServerError, messageResponse{Message: constants.MsgInternalError})
}

// describeInvalid turns binding and validation errors into one readable line.
func describeInvalid(err error) string {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("invalid request body: %s has the wrong type", typeErr.Field)
		}
		return msgInvalidBody
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return msgInvalidBody
	case !errors.As(err, &verrs):
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be between %d and %d", field, constants.MinWeekDay, constants.MaxWeekDay))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid uuid", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
