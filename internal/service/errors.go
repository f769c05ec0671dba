package service

import "errors"

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("agenda event not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidSituation   = errors.New("invalid situation")
	ErrInvalidRange       = errors.New("end date must not precede start date")
	ErrReaderNil          = errors.New("reader is nil")
	ErrStorageDisabled    = errors.New("attachment storage is not configured")
)
