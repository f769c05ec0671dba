package model

import "time"

// Attachment is a file stored in object storage and linked to an agenda event.
type Attachment struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
