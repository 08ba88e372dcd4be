package models

import "time"

// StoredFile is one entry of the file listing. It is derived from the storage backend on
// every request and has no lifecycle of its own.
type StoredFile struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadedFile describes a part accepted by an upload request.
type UploadedFile struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimetype"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadResponse is the body returned by a successful upload.
type UploadResponse struct {
	Message string         `json:"message"`
	Files   []UploadedFile `json:"files"`
}

// PublicPath returns the static route a stored file is reachable at.
func PublicPath(filename string) string {
	return "/uploads/" + filename
}
