package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GeneratedDocument is the persisted record of one compiled document.
// Rows are immutable once written: create, read and delete, never update.
type GeneratedDocument struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course       *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	UnitID       *uuid.UUID     `gorm:"type:uuid;index" json:"unit_id,omitempty"`
	LessonID     *uuid.UUID     `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	DocumentType string         `gorm:"column:document_type;not null" json:"document_type"`
	Filename     string         `gorm:"column:filename;not null" json:"filename"`
	StoragePath  string         `gorm:"column:storage_path;not null" json:"storage_path"`
	FileSize     int64          `gorm:"column:file_size;not null" json:"file_size"`
	Checksum     string         `gorm:"column:checksum;not null" json:"checksum"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	GeneratedAt  time.Time      `gorm:"column:generated_at;not null;default:now()" json:"generated_at"`
}

func (GeneratedDocument) TableName() string { return "generated_document" }
