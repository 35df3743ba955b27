package models

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null;index:idx_folder_owner_name,unique" json:"name"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null;index:idx_folder_owner_name,unique" json:"created_by"`
	CreatedByUser User      `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Description   string    `gorm:"type:text" json:"description"`
	Slug          string    `gorm:"size:255;index" json:"slug"` // slug cho URL thân thiện
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Materials []Material `gorm:"foreignKey:FolderID" json:"materials,omitempty"`
	Quizzes   []Quiz     `gorm:"foreignKey:FolderID" json:"quizzes,omitempty"`
}
