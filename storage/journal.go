package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/fileupload/models"
)

// Journal mirrors upload metadata somewhere outside the store. It is write-only from
// the service's point of view.
type Journal interface {
	Record(ctx context.Context, meta *models.FileMeta) error
	Forget(ctx context.Context, filename string) error
}

// NopJournal discards everything; used when no database is configured.
type NopJournal struct{}

func (NopJournal) Record(context.Context, *models.FileMeta) error { return nil }
func (NopJournal) Forget(context.Context, string) error { return nil }

// GormJournal stores one models.FileMeta row per upload.
type GormJournal struct {
	db *gorm.DB
}

// NewGormJournal returns a journal writing to db. The file_meta table must already be migrated.
func NewGormJournal(db *gorm.DB) *GormJournal {
	return &GormJournal{db: db}
}

func (j *GormJournal) Record(ctx context.Context, meta *models.FileMeta) error {
	return j.db.WithContext(ctx).Create(meta).Error
}

func (j *GormJournal) Forget(ctx context.Context, filename string) error {
	return j.db.WithContext(ctx).Where("filename = ?", filename).Delete(&models.FileMeta{}).Error
}
