package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/services"
)

type GeneratePlanInput struct {
	Approach       string `json:"approach" binding:"required"`
	QuestionsPerLO int    `json:"questions_per_lo" binding:"required"`
}

// POST /api/quizzes/:id/plans
// Lập kế hoạch tạo câu hỏi từ bảng tỷ lệ cố định theo approach.
func GeneratePlan(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input GeneratePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !services.ValidApproach(input.Approach) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Approach không hợp lệ (support|assess|challenge|comprehensive)"})
		return
	}
	if input.QuestionsPerLO < services.MinQuestionsPerLO || input.QuestionsPerLO > services.MaxQuestionsPerLO {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Số câu hỏi mỗi mục tiêu phải từ %d đến %d", services.MinQuestionsPerLO, services.MaxQuestionsPerLO),
		})
		return
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	if _, err := services.FindOwnedQuiz(db, quizID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	var objectives []models.LearningObjective
	db.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&objectives)
	if len(objectives) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Đề chưa có mục tiêu học tập nào"})
		return
	}

	planID := uuid.New()
	plan := models.GenerationPlan{
		ID:             planID,
		QuizID:         quizID,
		Approach:       input.Approach,
		QuestionsPerLO: input.QuestionsPerLO,
		TotalQuestions: len(objectives) * input.QuestionsPerLO,
		Status:         models.PlanStatusDraft,
		CreatedBy:      userID,
	}

	breakdown := services.BuildBreakdown(planID, objectives, input.Approach, input.QuestionsPerLO)
	distribution := services.ComputeDistribution(planID, breakdown, plan.TotalQuestions)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		if len(breakdown) > 0 {
			if err := tx.Create(&breakdown).Error; err != nil {
				return err
			}
		}
		if len(distribution) > 0 {
			if err := tx.Create(&distribution).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo kế hoạch", "details": err.Error()})
		return
	}

	updated, err := services.RecomputeQuizState(db, quizID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	plan.Breakdown = breakdown
	plan.Distribution = distribution
	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo kế hoạch thành công",
		"plan":    plan,
		"quiz":    updated,
	})
}

type BreakdownItemInput struct {
	ObjectiveID  string `json:"objective_id" binding:"required"`
	QuestionType string `json:"question_type" binding:"required"`
	Count        int    `json:"count"`
}

type UpdateBreakdownInput struct {
	Description string               `json:"description"`
	Breakdown   []BreakdownItemInput `json:"breakdown" binding:"required"`
}

// PUT /api/plans/:id/breakdown
// Thay toàn bộ breakdown; snapshot bản cũ vào nhật ký sửa đổi.
// TotalQuestions từ đây trở đi là tổng count thực tế.
func UpdatePlanBreakdown(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input UpdateBreakdownInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.Breakdown) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Breakdown không được trống"})
		return
	}

	plan, quiz, err := services.FindOwnedPlan(db, planID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy kế hoạch"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	if plan.Status == models.PlanStatusUsed {
		c.JSON(http.StatusConflict, gin.H{"error": "Kế hoạch đã dùng để sinh câu hỏi, không sửa được nữa"})
		return
	}

	// Mục tiêu hợp lệ của đề
	validObjectives := map[uuid.UUID]bool{}
	var objectiveIDs []uuid.UUID
	db.Model(&models.LearningObjective{}).Where("quiz_id = ?", quiz.ID).Pluck("id", &objectiveIDs)
	for _, id := range objectiveIDs {
		validObjectives[id] = true
	}

	newItems := make([]models.PlanBreakdownItem, 0, len(input.Breakdown))
	for _, item := range input.Breakdown {
		objectiveID, err := uuid.Parse(item.ObjectiveID)
		if err != nil || !validObjectives[objectiveID] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "objective_id không thuộc đề: " + item.ObjectiveID})
			return
		}
		if !services.ValidQuestionType(item.QuestionType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Loại câu hỏi không hợp lệ: " + item.QuestionType})
			return
		}
		if item.Count < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Count không được âm"})
			return
		}
		if item.Count == 0 {
			continue
		}
		newItems = append(newItems, models.PlanBreakdownItem{
			ID:           uuid.New(),
			PlanID:       planID,
			ObjectiveID:  objectiveID,
			QuestionType: item.QuestionType,
			Count:        item.Count,
			Reasoning:    services.ReasoningFor(item.QuestionType, plan.Approach),
		})
	}
	if len(newItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Breakdown phải có ít nhất một dòng count > 0"})
		return
	}

	// Snapshot breakdown hiện tại trước khi thay
	var oldItems []models.PlanBreakdownItem
	db.Where("plan_id = ?", planID).Find(&oldItems)
	snapshot, err := json.Marshal(oldItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo snapshot breakdown"})
		return
	}

	totalQuestions := services.SumBreakdown(newItems)
	distribution := services.ComputeDistribution(planID, newItems, totalQuestions)

	err = db.Transaction(func(tx *gorm.DB) error {
		modification := models.PlanModification{
			ID:                uuid.New(),
			PlanID:            planID,
			EditedBy:          userID,
			Description:       input.Description,
			PreviousBreakdown: string(snapshot),
		}
		if err := tx.Create(&modification).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanBreakdownItem{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&newItems).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanDistributionItem{}).Error; err != nil {
			return err
		}
		if len(distribution) > 0 {
			if err := tx.Create(&distribution).Error; err != nil {
				return err
			}
		}
		return tx.Model(plan).Updates(map[string]interface{}{
			"total_questions": totalQuestions,
			"status":          models.PlanStatusModified,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật kế hoạch", "details": err.Error()})
		return
	}

	plan.TotalQuestions = totalQuestions
	plan.Status = models.PlanStatusModified
	plan.Breakdown = newItems
	plan.Distribution = distribution
	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật kế hoạch thành công",
		"plan":    plan,
	})
}

// POST /api/plans/:id/approve
// Mỗi đề chỉ có nhiều nhất một kế hoạch hiệu lực; kế hoạch cũ bị hạ về draft.
func ApprovePlan(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	plan, quiz, err := services.FindOwnedPlan(db, planID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy kế hoạch"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		// Hạ kế hoạch đang hiệu lực (nếu có và khác kế hoạch này)
		if quiz.ActivePlanID != nil && *quiz.ActivePlanID != planID {
			if err := tx.Model(&models.GenerationPlan{}).
				Where("id = ?", *quiz.ActivePlanID).
				Updates(map[string]interface{}{"status": models.PlanStatusDraft, "approved_at": nil}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(plan).Updates(map[string]interface{}{
			"status":      models.PlanStatusApproved,
			"approved_at": &now,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Quiz{}).Where("id = ?", quiz.ID).
			Update("active_plan_id", planID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể duyệt kế hoạch", "details": err.Error()})
		return
	}

	updated, err := services.RecomputeQuizState(db, quiz.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	plan.Status = models.PlanStatusApproved
	plan.ApprovedAt = &now
	c.JSON(http.StatusOK, gin.H{
		"message": "Duyệt kế hoạch thành công",
		"plan":    plan,
		"quiz":    updated,
	})
}

// DELETE /api/plans/:id
// Không xóa kế hoạch đang hiệu lực.
func DeletePlan(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	plan, quiz, err := services.FindOwnedPlan(db, planID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy kế hoạch"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	if quiz.ActivePlanID != nil && *quiz.ActivePlanID == planID {
		c.JSON(http.StatusConflict, gin.H{"error": "Không thể xóa kế hoạch đang hiệu lực"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanBreakdownItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanDistributionItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanModification{}).Error; err != nil {
			return err
		}
		return tx.Delete(plan).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa kế hoạch"})
		return
	}

	updated, err := services.RecomputeQuizState(db, quiz.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Xóa kế hoạch thành công",
		"quiz":    updated,
	})
}
