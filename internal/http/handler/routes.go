package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"agendaapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db Pinger, agenda service.AgendaService, attachments service.AttachmentService, loc *time.Location) {
	app.Get("/auth", Authenticate())

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/events", FilterEvents(agenda))
	app.Post("/events", CreateEvent(agenda))
	app.Get("/events/:id", GetEvent(agenda))
	app.Patch("/events/:id", UpdateEvent(agenda))
	app.Delete("/events/:id", DeleteEvent(agenda))

	app.Get("/events/:id/attachments", ListAttachments(attachments))
	app.Post("/events/:id/attachments", UploadAttachment(attachments))
	app.Get("/events/:id/attachments/:aid/url", AttachmentURL(attachments))
	app.Get("/events/:id/attachments/:aid/content", AttachmentContent(attachments))
	app.Delete("/events/:id/attachments/:aid", DeleteAttachment(attachments))

	app.Get("/calendar/day", CalendarView(agenda.Day, loc))
	app.Get("/calendar/week", CalendarView(agenda.Week, loc))
	app.Get("/calendar/month", CalendarView(agenda.Month, loc))
}
