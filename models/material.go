package models

import (
	"time"

	"github.com/google/uuid"
)

type MaterialType string

const (
	MaterialFile MaterialType = "file"
	MaterialURL  MaterialType = "url"
	MaterialText MaterialType = "text"
)

// Trạng thái xử lý tài liệu
const (
	ProcessingPending    = "pending"
	ProcessingProcessing = "processing"
	ProcessingCompleted  = "completed"
	ProcessingFailed     = "failed"
)

type Material struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FolderID      uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:idx_material_folder_checksum" json:"folder_id"`
	Folder        Folder       `gorm:"foreignKey:FolderID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedBy     uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedByUser User         `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Name          string       `gorm:"size:255;not null" json:"name"`
	Type          MaterialType `gorm:"size:10;not null" json:"type"`

	FilePath  string `gorm:"type:text" json:"file_path"`  // URL Supabase nếu là file
	SourceURL string `gorm:"type:text" json:"source_url"` // URL gốc nếu là url
	Content   string `gorm:"type:text" json:"content"`    // nội dung nếu là text
	FileType  string `gorm:"size:50" json:"file_type"`
	FileSize  int64  `json:"file_size"` // bytes

	// Checksum SHA-256 của nội dung; unique theo (thư mục, checksum)
	// để hai upload trùng nhau chạy song song không cùng lọt qua
	Checksum string `gorm:"size:64;not null;uniqueIndex:idx_material_folder_checksum" json:"checksum"`

	ProcessingStatus string     `gorm:"size:20;default:'pending'" json:"processing_status"` // pending|processing|completed|failed
	ErrorDetail      string     `gorm:"type:text" json:"error_detail,omitempty"`
	ExtractedText    string     `gorm:"type:text" json:"extracted_text,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
