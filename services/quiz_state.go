package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
)

// QuizCounts: kích thước các collection con của một đề tại một thời điểm
type QuizCounts struct {
	Materials  int64
	Objectives int64
	Plans      int64
	Questions  int64
	HasActive  bool
}

// QuizProgress: 5 cờ tiến độ, suy ra thuần túy từ QuizCounts
type QuizProgress struct {
	MaterialsAssigned  bool
	ObjectivesSet      bool
	PlanGenerated      bool
	PlanApproved       bool
	QuestionsGenerated bool
}

// DeriveProgress là hàm thuần: không đọc DB, không side effect
func DeriveProgress(c QuizCounts) QuizProgress {
	return QuizProgress{
		MaterialsAssigned:  c.Materials > 0,
		ObjectivesSet:      c.Objectives > 0,
		PlanGenerated:      c.Plans > 0,
		PlanApproved:       c.HasActive,
		QuestionsGenerated: c.Questions > 0,
	}
}

// DeriveStatus ánh xạ tiến độ sang đúng một trạng thái, ưu tiên giai đoạn
// muộn nhất đã hoàn thành. Có câu hỏi là coi như hoàn thành, bất kể các
// cờ trung gian.
func DeriveStatus(p QuizProgress) string {
	switch {
	case p.QuestionsGenerated:
		return models.QuizStatusCompleted
	case p.PlanApproved:
		return models.QuizStatusPlanApproved
	case p.PlanGenerated:
		return models.QuizStatusPlanGenerated
	case p.ObjectivesSet:
		return models.QuizStatusObjectivesSet
	case p.MaterialsAssigned:
		return models.QuizStatusMaterialsAssigned
	default:
		return models.QuizStatusDraft
	}
}

// CountQuizCollections đếm các collection con hiện tại của đề
func CountQuizCollections(db *gorm.DB, quiz *models.Quiz) (QuizCounts, error) {
	var c QuizCounts
	if err := db.Table("quiz_materials").Where("quiz_id = ?", quiz.ID).Count(&c.Materials).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.LearningObjective{}).Where("quiz_id = ?", quiz.ID).Count(&c.Objectives).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.GenerationPlan{}).Where("quiz_id = ?", quiz.ID).Count(&c.Plans).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&c.Questions).Error; err != nil {
		return c, err
	}
	c.HasActive = quiz.ActivePlanID != nil
	return c, nil
}

// RecomputeQuizState đếm lại các collection con rồi ghi đè progress + status.
// Phải gọi sau MỌI thao tác thêm/xóa/gán làm thay đổi tài liệu, mục tiêu,
// kế hoạch, activePlan hoặc câu hỏi của đề.
func RecomputeQuizState(db *gorm.DB, quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := db.First(&quiz, "id = ?", quizID).Error; err != nil {
		return nil, err
	}

	counts, err := CountQuizCollections(db, &quiz)
	if err != nil {
		return nil, err
	}

	progress := DeriveProgress(counts)
	status := DeriveStatus(progress)

	updates := map[string]interface{}{
		"materials_assigned":  progress.MaterialsAssigned,
		"objectives_set":      progress.ObjectivesSet,
		"plan_generated":      progress.PlanGenerated,
		"plan_approved":       progress.PlanApproved,
		"questions_generated": progress.QuestionsGenerated,
		"status":              status,
	}
	if err := db.Model(&quiz).Updates(updates).Error; err != nil {
		return nil, err
	}

	quiz.MaterialsAssigned = progress.MaterialsAssigned
	quiz.ObjectivesSet = progress.ObjectivesSet
	quiz.PlanGenerated = progress.PlanGenerated
	quiz.PlanApproved = progress.PlanApproved
	quiz.QuestionsGenerated = progress.QuestionsGenerated
	quiz.Status = status
	return &quiz, nil
}

// AddGenerationRecord ghi một lần gọi AI sinh câu hỏi (thành công hay thất bại)
// vào nhật ký của đề. Bản ghi không bao giờ được sửa sau khi thêm.
func AddGenerationRecord(db *gorm.DB, rec *models.GenerationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return db.Create(rec).Error
}
