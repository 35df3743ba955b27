package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
)

// Các hàm tìm entity theo id kèm điều kiện sở hữu. Entity không tồn tại và
// entity của người khác đều trả về gorm.ErrRecordNotFound — cố ý không phân
// biệt để không lộ dữ liệu của người dùng khác.

func FindOwnedFolder(db *gorm.DB, folderID, userID uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := db.First(&folder, "id = ? AND created_by = ?", folderID, userID).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func FindOwnedMaterial(db *gorm.DB, materialID, userID uuid.UUID) (*models.Material, error) {
	var material models.Material
	if err := db.First(&material, "id = ? AND created_by = ?", materialID, userID).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func FindOwnedQuiz(db *gorm.DB, quizID, userID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := db.First(&quiz, "id = ? AND created_by = ?", quizID, userID).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindOwnedObjective đi qua đề cha để kiểm tra quyền sở hữu
func FindOwnedObjective(db *gorm.DB, objectiveID, userID uuid.UUID) (*models.LearningObjective, *models.Quiz, error) {
	var objective models.LearningObjective
	if err := db.First(&objective, "id = ?", objectiveID).Error; err != nil {
		return nil, nil, err
	}
	quiz, err := FindOwnedQuiz(db, objective.QuizID, userID)
	if err != nil {
		return nil, nil, err
	}
	return &objective, quiz, nil
}

func FindOwnedPlan(db *gorm.DB, planID, userID uuid.UUID) (*models.GenerationPlan, *models.Quiz, error) {
	var plan models.GenerationPlan
	if err := db.First(&plan, "id = ?", planID).Error; err != nil {
		return nil, nil, err
	}
	quiz, err := FindOwnedQuiz(db, plan.QuizID, userID)
	if err != nil {
		return nil, nil, err
	}
	return &plan, quiz, nil
}

func FindOwnedQuestion(db *gorm.DB, questionID, userID uuid.UUID) (*models.Question, *models.Quiz, error) {
	var question models.Question
	if err := db.First(&question, "id = ?", questionID).Error; err != nil {
		return nil, nil, err
	}
	quiz, err := FindOwnedQuiz(db, question.QuizID, userID)
	if err != nil {
		return nil, nil, err
	}
	return &question, quiz, nil
}
