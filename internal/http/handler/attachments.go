package handler

import (
	"mime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"agendaapi/internal/model"
	"agendaapi/internal/service"
)

// AttachmentListResult is the response body of attachment listings.
type AttachmentListResult struct {
	Items []model.Attachment `json:"data"`
	Total int                `json:"total"`
}

// attachmentIDs validates the :id and :aid route parameters.
func attachmentIDs(c *fiber.Ctx) (string, string, bool) {
	evID, ok := eventID(c)
	if !ok {
		return "", "", false
	}
	id := c.Params("aid")
	if _, err := uuid.Parse(id); err != nil {
		return "", "", false
	}
	return evID, id, true
}

// ListAttachments lists the files of an event.
//
// @Summary      List attachments
// @Tags         attachments
// @Produce      json
// @Param        id   path  string  true  "Event ID"
// @Success      200  {object}  AttachmentListResult
// @Failure      404  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /events/{id}/attachments [get]
func ListAttachments(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := eventID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		items, err := svc.List(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if items == nil {
			items = []model.Attachment{}
		}
		return c.JSON(AttachmentListResult{Items: items, Total: len(items)})
	}
}

// UploadAttachment stores a file for an event (multipart/form-data, field name: file).
//
// @Summary      Upload attachment
// @Tags         attachments
// @Accept       mpfd
// @Produce      json
// @Param        id    path      string  true  "Event ID"
// @Param        file  formData  file    true  "File"
// @Success      201  {object}  model.Attachment
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /events/{id}/attachments [post]
func UploadAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := eventID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		a, err := svc.Upload(c.UserContext(), id, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// AttachmentURL returns a presigned download URL.
//
// @Summary      Attachment download URL
// @Tags         attachments
// @Produce      json
// @Param        id   path  string  true  "Event ID"
// @Param        aid  path  string  true  "Attachment ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /events/{id}/attachments/{aid}/url [get]
func AttachmentURL(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		evID, id, ok := attachmentIDs(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.PresignURL(c.UserContext(), evID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"url":        url,
			"expires_in": int(service.PresignExpiry.Seconds()),
		})
	}
}

// AttachmentContent streams the stored file.
//
// @Summary      Download attachment
// @Tags         attachments
// @Produce      octet-stream
// @Param        id   path  string  true  "Event ID"
// @Param        aid  path  string  true  "Attachment ID"
// @Success      200  {file}  file
// @Failure      404  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /events/{id}/attachments/{aid}/content [get]
func AttachmentContent(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		evID, id, ok := attachmentIDs(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, a, err := svc.Open(c.UserContext(), evID, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, a.ContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
		// fasthttp closes rc once the body is written.
		if a.Size > 0 {
			return c.SendStream(rc, int(a.Size))
		}
		return c.SendStream(rc)
	}
}

// DeleteAttachment removes a file from an event.
//
// @Summary      Delete attachment
// @Tags         attachments
// @Param        id   path  string  true  "Event ID"
// @Param        aid  path  string  true  "Attachment ID"
// @Success      204
// @Failure      404  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /events/{id}/attachments/{aid} [delete]
func DeleteAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		evID, id, ok := attachmentIDs(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), evID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
