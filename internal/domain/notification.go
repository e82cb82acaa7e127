package domain

import "time"

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

// FileUpload is one file received from a resident, labelled with the
// requirement it satisfies.
type FileUpload struct {
	Label       string
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}
