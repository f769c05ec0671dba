package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"agendaapi/internal/model"
)

// ViewFunc renders one calendar view for the given day.
type ViewFunc func(ctx context.Context, d model.Date) ([]model.AgendaEvent, error)

// ViewResult is the response body of calendar views.
type ViewResult struct {
	Date  model.Date          `json:"date"`
	Items []model.AgendaEvent `json:"data"`
}

// CalendarView serves a day, week or month view. The date query parameter
// defaults to today in loc.
//
// @Summary      Calendar views
// @Tags         calendar
// @Produce      json
// @Param        date  query  string  false  "Reference day (YYYY-MM-DD)"
// @Success      200  {object}  ViewResult
// @Failure      400  {object}  errorPayload
// @Router       /calendar/day [get]
// @Router       /calendar/week [get]
// @Router       /calendar/month [get]
func CalendarView(view ViewFunc, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := optionalDate(c, "date")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		}
		if d == nil {
			now := time.Now().In(loc)
			today := model.NewDate(now.Year(), now.Month(), now.Day())
			d = &today
		}

		events, err := view(c.UserContext(), *d)
		if err != nil {
			return writeServiceError(c, err)
		}
		if events == nil {
			events = []model.AgendaEvent{}
		}
		return c.JSON(ViewResult{Date: *d, Items: events})
	}
}
