package models

import "time"

// Image is the metadata half of an upload; the bytes live in the image pool
// under "<uid>-<filename>".
type Image struct {
	UID        string    `json:"uid"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	UserID     string    `json:"user_id"`
}
