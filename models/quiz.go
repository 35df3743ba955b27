package models

import (
	"time"

	"github.com/google/uuid"
)

// Trạng thái tổng của đề — luôn được suy ra từ các collection con,
// không bao giờ gán trực tiếp từ phía client.
const (
	QuizStatusDraft             = "draft"
	QuizStatusMaterialsAssigned = "materials-assigned"
	QuizStatusObjectivesSet     = "objectives-set"
	QuizStatusPlanGenerated     = "plan-generated"
	QuizStatusPlanApproved      = "plan-approved"
	QuizStatusGenerating        = "generating"
	QuizStatusGenerated         = "generated"
	QuizStatusReviewing         = "reviewing"
	QuizStatusCompleted         = "completed"
)

type Quiz struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FolderID      uuid.UUID `gorm:"type:uuid;not null;index:idx_quiz_folder_name,unique" json:"folder_id"`
	Folder        Folder    `gorm:"foreignKey:FolderID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Name          string    `gorm:"size:255;not null;index:idx_quiz_folder_name,unique" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedByUser User      `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	// Cấu hình chung khi sinh câu hỏi
	DefaultDifficulty string `gorm:"size:20;default:'medium'" json:"default_difficulty"` // easy|medium|hard
	Language          string `gorm:"size:10;default:'vi'" json:"language"`

	// Kế hoạch đang hiệu lực (nhiều nhất một)
	ActivePlanID *uuid.UUID `gorm:"type:uuid" json:"active_plan_id"`

	// 5 cờ tiến độ — hàm thuần của kích thước các collection con
	MaterialsAssigned  bool `gorm:"default:false" json:"materials_assigned"`
	ObjectivesSet      bool `gorm:"default:false" json:"objectives_set"`
	PlanGenerated      bool `gorm:"default:false" json:"plan_generated"`
	PlanApproved       bool `gorm:"default:false" json:"plan_approved"`
	QuestionsGenerated bool `gorm:"default:false" json:"questions_generated"`

	Status string `gorm:"size:30;default:'draft'" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Materials         []Material          `gorm:"many2many:quiz_materials;" json:"materials,omitempty"`
	Objectives        []LearningObjective `gorm:"foreignKey:QuizID" json:"objectives,omitempty"`
	Plans             []GenerationPlan    `gorm:"foreignKey:QuizID" json:"plans,omitempty"`
	Questions         []Question          `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	GenerationRecords []GenerationRecord  `gorm:"foreignKey:QuizID" json:"generation_records,omitempty"`
	Exports           []QuizExport        `gorm:"foreignKey:QuizID" json:"exports,omitempty"`
}
