package models

import "time"

// FileMeta mirrors upload metadata into the journal database. Nothing reads it back
// to answer requests; listings always come from the storage backend.
type FileMeta struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OriginalName string    `gorm:"size:1024;not null" json:"original_name"`
	Filename     string    `gorm:"size:1024;not null;index" json:"filename"`
	MimeType     string    `gorm:"size:255" json:"mime_type"`
	Size         int64     `json:"size"`
	UploadDate   time.Time `gorm:"autoCreateTime" json:"upload_date"`
}
