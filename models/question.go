package models

import (
	"time"

	"github.com/google/uuid"
)

// Loại câu hỏi
const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
	QuestionShortAnswer    = "short-answer"
	QuestionFillInBlank    = "fill-in-blank"
	QuestionEssay          = "essay"
)

// Trạng thái duyệt câu hỏi — chuyển tự do giữa các trạng thái
const (
	ReviewPending     = "pending"
	ReviewApproved    = "approved"
	ReviewNeedsReview = "needs-review"
	ReviewRejected    = "rejected"
)

type Question struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	ObjectiveID uuid.UUID         `gorm:"type:uuid;not null;index" json:"objective_id"`
	Objective   LearningObjective `gorm:"foreignKey:ObjectiveID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	// Kế hoạch đã sinh ra câu hỏi này (nếu sinh tự động)
	PlanID *uuid.UUID `gorm:"type:uuid" json:"plan_id,omitempty"`

	Type       string `gorm:"size:30;not null" json:"type"`
	Difficulty string `gorm:"size:20;default:'medium'" json:"difficulty"` // easy|medium|hard
	Text       string `gorm:"type:text;not null" json:"text"`

	// Nội dung có cấu trúc theo từng loại (JSON): lựa chọn, cặp ghép,...
	Content       string `gorm:"type:text" json:"content"`
	CorrectAnswer string `gorm:"type:text" json:"correct_answer"`
	Explanation   string `gorm:"type:text" json:"explanation"`

	Order        int    `gorm:"column:sort_order;not null" json:"order"` // 0-based, liên tục trong một đề
	ReviewStatus string `gorm:"size:20;default:'pending'" json:"review_status"`

	// Provenance
	Source     string   `gorm:"size:20;not null;default:'manual'" json:"source"` // manual|generated
	Confidence *float64 `json:"confidence,omitempty"`
	ModelName  string   `gorm:"size:100" json:"model_name,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	EditHistory []QuestionEdit `gorm:"foreignKey:QuestionID" json:"edit_history,omitempty"`
}

// Bản ghi chỉnh sửa câu hỏi — chỉ thêm, không bao giờ sửa/xóa
type QuestionEdit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	EditedBy    uuid.UUID `gorm:"type:uuid;not null" json:"edited_by"`
	Description string    `gorm:"type:text" json:"description"`

	// Snapshot giá trị trước khi sửa
	PreviousText          string `gorm:"type:text" json:"previous_text"`
	PreviousContent       string `gorm:"type:text" json:"previous_content"`
	PreviousCorrectAnswer string `gorm:"type:text" json:"previous_correct_answer"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
