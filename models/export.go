package models

import (
	"time"

	"github.com/google/uuid"
)

// Một lần xuất đề ra file — lưu tham chiếu artifact và bộ đếm lượt tải
type QuizExport struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	Format        string    `gorm:"size:10;not null;default:'xlsx'" json:"format"`
	FilePath      string    `gorm:"type:text;not null" json:"file_path"` // URL Supabase
	FileSize      int64     `json:"file_size"`                           // bytes
	DownloadCount int       `gorm:"default:0" json:"download_count"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
