package models

import (
	"time"

	"github.com/google/uuid"
)

// Nguồn gốc của mục tiêu / câu hỏi
const (
	SourceManual    = "manual"
	SourceGenerated = "generated"
)

type LearningObjective struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	Text  string `gorm:"type:text;not null" json:"text"`
	Order int    `gorm:"column:sort_order;not null" json:"order"` // 0-based, liên tục trong một đề

	// Provenance
	Source     string   `gorm:"size:20;not null;default:'manual'" json:"source"` // manual|generated
	Confidence *float64 `json:"confidence,omitempty"`
	ModelName  string   `gorm:"size:100" json:"model_name,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	EditHistory []ObjectiveEdit `gorm:"foreignKey:ObjectiveID" json:"edit_history,omitempty"`
	Questions   []Question      `gorm:"foreignKey:ObjectiveID" json:"questions,omitempty"`
}

// Bản ghi chỉnh sửa mục tiêu — chỉ thêm, không bao giờ sửa/xóa
type ObjectiveEdit struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObjectiveID  uuid.UUID `gorm:"type:uuid;not null;index" json:"objective_id"`
	EditedBy     uuid.UUID `gorm:"type:uuid;not null" json:"edited_by"`
	Description  string    `gorm:"type:text" json:"description"`
	PreviousText string    `gorm:"type:text" json:"previous_text"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
