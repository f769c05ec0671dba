package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"agendaapi/internal/model"
	"agendaapi/internal/service"
)

// EventListResult is the response body of event listings.
type EventListResult struct {
	Items []model.AgendaEvent `json:"data"`
	Total int                 `json:"total"`
}

func newEventList(events []model.AgendaEvent) EventListResult {
	if events == nil {
		events = []model.AgendaEvent{}
	}
	return EventListResult{Items: events, Total: len(events)}
}

// eventID validates the :id route parameter.
func eventID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// optionalDate parses a YYYY-MM-DD query parameter; empty means absent.
func optionalDate(c *fiber.Ctx, key string) (*model.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FilterEvents lists events matching the query filters.
//
// @Summary      Filter agenda events
// @Tags         events
// @Produce      json
// @Param        sei          query  string  false  "SEI number (digits matched as substring)"
// @Param        type         query  string  false  "Action type, TODOS disables"
// @Param        situation    query  string  false  "Situation, TODAS disables"
// @Param        focal_point  query  string  false  "Focal point substring"
// @Param        location     query  string  false  "Location substring"
// @Param        from         query  string  false  "First day (YYYY-MM-DD)"
// @Param        to           query  string  false  "Last day (YYYY-MM-DD)"
// @Success      200  {object}  EventListResult
// @Failure      400  {object}  errorPayload
// @Router       /events [get]
func FilterEvents(svc service.AgendaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := optionalDate(c, "from")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "from must be YYYY-MM-DD")
		}
		to, err := optionalDate(c, "to")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "to must be YYYY-MM-DD")
		}

		events, err := svc.Filter(c.UserContext(), service.FilterInput{
			SEINumber:  c.Query("sei"),
			Type:       c.Query("type"),
			Situation:  c.Query("situation"),
			FocalPoint: c.Query("focal_point"),
			Location:   c.Query("location"),
			From:       from,
			To:         to,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newEventList(events))
	}
}

// CreateEvent adds an event to the agenda.
//
// @Summary      Create agenda event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        event  body  model.CreateEventInput  true  "Event"
// @Success      201  {object}  model.AgendaEvent
// @Failure      400  {object}  errorPayload
// @Router       /events [post]
func CreateEvent(svc service.AgendaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.CreateEventInput
		if err := json.Unmarshal(c.Body(), &in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		}
		e, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// GetEvent returns one event.
//
// @Summary      Get agenda event
// @Tags         events
// @Produce      json
// @Param        id   path  string  true  "Event ID"
// @Success      200  {object}  model.AgendaEvent
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /events/{id} [get]
func GetEvent(svc service.AgendaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := eventID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		e, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(e)
	}
}

// UpdateEvent applies a partial update. Fields sent as null are cleared.
//
// @Summary      Update agenda event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id     path  string                  true  "Event ID"
// @Param        patch  body  model.UpdateEventInput  true  "Fields to change"
// @Success      200  {object}  model.AgendaEvent
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /events/{id} [patch]
func UpdateEvent(svc service.AgendaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := eventID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in model.UpdateEventInput
		if err := json.Unmarshal(c.Body(), &in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		}
		e, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(e)
	}
}

// DeleteEvent removes an event and its attachments.
//
// @Summary      Delete agenda event
// @Tags         events
// @Param        id   path  string  true  "Event ID"
// @Success      204
// @Failure      404  {object}  errorPayload
// @Router       /events/{id} [delete]
func DeleteEvent(svc service.AgendaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := eventID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
