package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agendaapi/internal/model"
	"agendaapi/internal/service"
	serviceMocks "agendaapi/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	part.Write([]byte(content))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Post("/events/:id/attachments", UploadAttachment(mockSvc))
	eventID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		body, ct := multipartFile(t, "oficio.pdf", "hello world")
		expected := &model.Attachment{ID: uuid.NewString(), EventID: eventID, Filename: "oficio.pdf"}
		mockSvc.On("Upload", mock.Anything, eventID, mock.Anything, "oficio.pdf", mock.Anything, int64(11)).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/attachments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result model.Attachment
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/attachments", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("storage disabled", func(t *testing.T) {
		body, ct := multipartFile(t, "a.txt", "x")
		mockSvc.On("Upload", mock.Anything, eventID, mock.Anything, "a.txt", mock.Anything, mock.Anything).
			Return(nil, service.ErrStorageDisabled).Once()

		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/attachments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STORAGE_DISABLED", res.Error.Code)
	})

	t.Run("unknown event", func(t *testing.T) {
		body, ct := multipartFile(t, "a.txt", "x")
		mockSvc.On("Upload", mock.Anything, eventID, mock.Anything, "a.txt", mock.Anything, mock.Anything).
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/attachments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartFile(t, "a.txt", "hello")
		mockSvc.On("Upload", mock.Anything, eventID, mock.Anything, "a.txt", mock.Anything, mock.Anything).
			Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/attachments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListAttachments(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Get("/events/:id/attachments", ListAttachments(mockSvc))
	eventID := uuid.NewString()

	mockSvc.On("List", mock.Anything, eventID).Return([]model.Attachment{{ID: "a1"}, {ID: "a2"}}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/events/"+eventID+"/attachments", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result AttachmentListResult
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, 2, result.Total)
}

func TestAttachmentURL(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Get("/events/:id/attachments/:aid/url", AttachmentURL(mockSvc))
	eventID, aid := uuid.NewString(), uuid.NewString()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("PresignURL", mock.Anything, eventID, aid).Return("https://minio.local/obj?X-Amz-Signature=abc", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/events/"+eventID+"/attachments/"+aid+"/url", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "https://minio.local/obj?X-Amz-Signature=abc", result["url"])
		assert.Equal(t, float64(900), result["expires_in"])
	})

	t.Run("invalid attachment id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/events/"+eventID+"/attachments/nope/url", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("attachment not found", func(t *testing.T) {
		other := uuid.NewString()
		mockSvc.On("PresignURL", mock.Anything, eventID, other).Return("", service.ErrAttachmentNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/events/"+eventID+"/attachments/"+other+"/url", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "attachment not found", res.Error.Message)
	})
}

func TestAttachmentContent(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Get("/events/:id/attachments/:aid/content", AttachmentContent(mockSvc))
	eventID, aid := uuid.NewString(), uuid.NewString()

	mockSvc.On("Open", mock.Anything, eventID, aid).Return(
		io.NopCloser(strings.NewReader("%PDF-1.7")),
		&model.Attachment{ID: aid, Filename: "ofício.pdf", ContentType: "application/pdf", Size: 8},
		nil,
	).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/events/"+eventID+"/attachments/"+aid+"/content", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF-1.7", readBody(t, resp))
}

func TestDeleteAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Delete("/events/:id/attachments/:aid", DeleteAttachment(mockSvc))
	eventID, aid := uuid.NewString(), uuid.NewString()

	mockSvc.On("Delete", mock.Anything, eventID, aid).Return(nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/events/"+eventID+"/attachments/"+aid, nil))

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}
