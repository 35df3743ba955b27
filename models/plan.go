package models

import (
	"time"

	"github.com/google/uuid"
)

// Trạng thái kế hoạch tạo câu hỏi
const (
	PlanStatusDraft    = "draft"
	PlanStatusApproved = "approved"
	PlanStatusModified = "modified"
	PlanStatusUsed     = "used"
)

type GenerationPlan struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	Approach       string `gorm:"size:30;not null" json:"approach"` // support|assess|challenge|comprehensive
	QuestionsPerLO int    `gorm:"not null" json:"questions_per_lo"` // 1..10
	TotalQuestions int    `gorm:"not null" json:"total_questions"`
	Status         string `gorm:"size:20;default:'draft'" json:"status"` // draft|approved|modified|used

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Breakdown     []PlanBreakdownItem    `gorm:"foreignKey:PlanID" json:"breakdown,omitempty"`
	Distribution  []PlanDistributionItem `gorm:"foreignKey:PlanID" json:"distribution,omitempty"`
	Modifications []PlanModification     `gorm:"foreignKey:PlanID" json:"modifications,omitempty"`
}

// Một dòng phân bổ: mục tiêu × loại câu hỏi → số lượng + lý do
type PlanBreakdownItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID       uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	ObjectiveID  uuid.UUID `gorm:"type:uuid;not null;index" json:"objective_id"`
	QuestionType string    `gorm:"size:30;not null" json:"question_type"`
	Count        int       `gorm:"not null" json:"count"`
	Reasoning    string    `gorm:"type:text" json:"reasoning"`
}

// Tổng hợp toàn đề theo loại câu hỏi — luôn tính lại từ Breakdown
type PlanDistributionItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID       uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	QuestionType string    `gorm:"size:30;not null" json:"question_type"`
	TotalCount   int       `gorm:"not null" json:"total_count"`
	Percentage   int       `gorm:"not null" json:"percentage"` // làm tròn độc lập theo loại, tổng có thể lệch 100
}

// Nhật ký sửa kế hoạch — chỉ thêm
type PlanModification struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID            uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	EditedBy          uuid.UUID `gorm:"type:uuid;not null" json:"edited_by"`
	Description       string    `gorm:"type:text" json:"description"`
	PreviousBreakdown string    `gorm:"type:text" json:"previous_breakdown"` // snapshot JSON
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}
