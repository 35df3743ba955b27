package models

import (
	"time"

	"github.com/google/uuid"
)

// Nhật ký các lần gọi AI sinh câu hỏi cho một đề — ghi cả thành công lẫn
// thất bại, không bao giờ sửa sau khi thêm.
type GenerationRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	PlanID        *uuid.UUID `gorm:"type:uuid" json:"plan_id,omitempty"`
	Approach      string     `gorm:"size:30" json:"approach"`
	QuestionCount int        `json:"question_count"` // số câu sinh được
	ElapsedMs     int64      `json:"elapsed_ms"`
	ModelName     string     `gorm:"size:100" json:"model_name"`
	Success       bool       `json:"success"`
	ErrorMessage  string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
