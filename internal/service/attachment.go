package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"agendaapi/internal/model"
	"agendaapi/internal/repository"
	"agendaapi/internal/storage"
)

// PresignExpiry is the lifetime of attachment download URLs.
const PresignExpiry = 15 * time.Minute

// AttachmentService defines the use cases for files linked to agenda events.
type AttachmentService interface {
	// Upload stores the content in object storage, saves metadata to DB, and rolls back storage if DB save fails.
	Upload(ctx context.Context, eventID string, r io.Reader, originalFilename, contentType string, size int64) (*model.Attachment, error)

	List(ctx context.Context, eventID string) ([]model.Attachment, error)

	// Open streams the attachment content. The caller closes the reader.
	Open(ctx context.Context, eventID, id string) (io.ReadCloser, *model.Attachment, error)

	// PresignURL returns a download URL valid for PresignExpiry.
	PresignURL(ctx context.Context, eventID, id string) (string, error)

	// Delete removes the attachment from storage, then its record.
	Delete(ctx context.Context, eventID, id string) error
}

type attachmentService struct {
	store  storage.Storage
	events repository.AgendaEventRepository
	repo   repository.AttachmentRepository
	now    func() time.Time
}

// NewAttachmentService constructs a new AttachmentService. A nil store disables
// every operation with ErrStorageDisabled.
func NewAttachmentService(store storage.Storage, events repository.AgendaEventRepository, repo repository.AttachmentRepository) AttachmentService {
	return &attachmentService{store: store, events: events, repo: repo, now: time.Now}
}

func (s *attachmentService) Upload(ctx context.Context, eventID string, r io.Reader, originalFilename, contentType string, size int64) (*model.Attachment, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}

	key, opt := storage.AttachmentObject(eventID, originalFilename, contentType, size)
	objInfo, err := s.store.Put(ctx, key, r, opt)
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	a := &model.Attachment{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Filename:    filepath.Base(originalFilename),
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: objInfo.ContentType,
		CreatedAt:   s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, a)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *attachmentService) List(ctx context.Context, eventID string) ([]model.Attachment, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *attachmentService) Open(ctx context.Context, eventID, id string) (io.ReadCloser, *model.Attachment, error) {
	a, err := s.find(ctx, eventID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, a.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("get from storage: %w", err)
	}
	return rc, a, nil
}

func (s *attachmentService) PresignURL(ctx context.Context, eventID, id string) (string, error) {
	a, err := s.find(ctx, eventID, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, a.StoragePath, PresignExpiry)
}

func (s *attachmentService) Delete(ctx context.Context, eventID, id string) error {
	a, err := s.find(ctx, eventID, id)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep the row so the object stays referenced.
	if err := s.store.Delete(ctx, a.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *attachmentService) find(ctx context.Context, eventID, id string) (*model.Attachment, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if eventID == "" || id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.repo.FindByID(ctx, eventID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *attachmentService) ensureEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrIDRequired
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
