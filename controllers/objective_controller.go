package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/services"
)

// POST /api/quizzes/:id/objectives/generate
// Sinh mục tiêu học tập từ nội dung các tài liệu đã gán vào đề.
func GenerateObjectives(c *gin.Context) {
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

	maxObjectives, _ := strconv.Atoi(c.DefaultQuery("max", "10"))
	if maxObjectives < 1 || maxObjectives > 30 {
		maxObjectives = 10
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	if _, err := services.FindOwnedQuiz(db, quizID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	// Gom nội dung đã trích xuất của các tài liệu gán vào đề
	var materials []models.Material
	db.Joins("JOIN quiz_materials ON quiz_materials.material_id = materials.id").
		Where("quiz_materials.quiz_id = ? AND materials.processing_status = ?", quizID, models.ProcessingCompleted).
		Find(&materials)

	materialTexts := []string{}
	for _, m := range materials {
		if strings.TrimSpace(m.ExtractedText) != "" {
			materialTexts = append(materialTexts, m.ExtractedText)
		}
	}
	if len(materialTexts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Đề chưa có tài liệu nào đã xử lý xong"})
		return
	}

	prompt := services.BuildObjectivesPrompt(materialTexts, maxObjectives)
	raw, err := services.RetryGemini(prompt, 3)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Gemini không phản hồi", "details": err.Error()})
		return
	}

	generated, err := services.ParseObjectivesResponse(raw)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Không đọc được kết quả từ Gemini", "details": err.Error()})
		return
	}

	// Thêm vào cuối danh sách hiện có, giữ thứ tự 0-based liên tục
	var maxOrder int64
	db.Model(&models.LearningObjective{}).Where("quiz_id = ?", quizID).Count(&maxOrder)

	objectives := make([]models.LearningObjective, 0, len(generated))
	for i, g := range generated {
		conf := g.Confidence
		objectives = append(objectives, models.LearningObjective{
			ID:         uuid.New(),
			QuizID:     quizID,
			Text:       strings.TrimSpace(g.Text),
			Order:      int(maxOrder) + i,
			Source:     models.SourceGenerated,
			Confidence: &conf,
			ModelName:  services.GeminiModelName,
		})
	}
	if err := db.Create(&objectives).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được mục tiêu"})
		return
	}

	updated, err := services.RecomputeQuizState(db, quizID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Sinh mục tiêu thành công",
		"objectives": objectives,
		"quiz":       updated,
	})
}

type ClassifyTextInput struct {
	Text string `json:"text" binding:"required"`
}

// POST /api/objectives/classify
// Gán một đoạn văn bản vào các mục tiêu học tập mà nó phục vụ.
func ClassifyText(c *gin.Context) {
	var input ClassifyTextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := services.BuildClassifyPrompt(input.Text)
	raw, err := services.RetryGemini(prompt, 3)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Gemini không phản hồi", "details": err.Error()})
		return
	}

	labels, err := services.ParseClassifyResponse(raw)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Không đọc được kết quả từ Gemini", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"objectives": labels})
}

type CreateObjectiveInput struct {
	Text string `json:"text" binding:"required"`
}

// POST /api/quizzes/:id/objectives
func CreateObjective(c *gin.Context) {
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

	var input CreateObjectiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nội dung mục tiêu không được trống"})
		return
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	if _, err := services.FindOwnedQuiz(db, quizID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	var count int64
	db.Model(&models.LearningObjective{}).Where("quiz_id = ?", quizID).Count(&count)

	objective := models.LearningObjective{
		ID:     uuid.New(),
		QuizID: quizID,
		Text:   text,
		Order:  int(count),
		Source: models.SourceManual,
	}
	if err := db.Create(&objective).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được mục tiêu"})
		return
	}

	updated, err := services.RecomputeQuizState(db, quizID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Thêm mục tiêu thành công",
		"objective": objective,
		"quiz":      updated,
	})
}

type ReorderInput struct {
	IDs []string `json:"ids" binding:"required"`
}

// PUT /api/quizzes/:id/objectives/reorder
// Danh sách id phải khớp chính xác tập mục tiêu hiện có của đề.
func ReorderObjectives(c *gin.Context) {
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

	var input ReorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requested := make([]uuid.UUID, 0, len(input.IDs))
	for _, idStr := range input.IDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id không hợp lệ: " + idStr})
			return
		}
		requested = append(requested, id)
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	if _, err := services.FindOwnedQuiz(db, quizID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	var current []uuid.UUID
	db.Model(&models.LearningObjective{}).Where("quiz_id = ?", quizID).Order("sort_order ASC").Pluck("id", &current)

	if err := services.ValidateReorder(current, requested); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i, id := range requested {
			if err := tx.Model(&models.LearningObjective{}).Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể sắp xếp lại mục tiêu"})
		return
	}

	var objectives []models.LearningObjective
	db.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&objectives)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Sắp xếp lại thành công",
		"objectives": objectives,
	})
}

type EditObjectiveInput struct {
	Text        string `json:"text" binding:"required"`
	Description string `json:"description"`
}

// PUT /api/objectives/:id
// Ghi lịch sử chỉnh sửa trước khi thay nội dung.
func EditObjectiveText(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	objectiveID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input EditObjectiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nội dung mục tiêu không được trống"})
		return
	}

	objective, quiz, err := services.FindOwnedObjective(db, objectiveID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy mục tiêu"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	err = db.Transaction(func(tx *gorm.DB) error {
		edit := models.ObjectiveEdit{
			ID:           uuid.New(),
			ObjectiveID:  objective.ID,
			EditedBy:     userID,
			Description:  input.Description,
			PreviousText: objective.Text,
		}
		if err := tx.Create(&edit).Error; err != nil {
			return err
		}
		return tx.Model(objective).Update("text", text).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật mục tiêu"})
		return
	}

	objective.Text = text
	c.JSON(http.StatusOK, gin.H{
		"message":   "Cập nhật mục tiêu thành công",
		"objective": objective,
	})
}

// DELETE /api/objectives/:id
// Xóa mục tiêu kéo theo câu hỏi của nó, rồi đánh lại thứ tự phần còn lại.
func DeleteObjective(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	objectiveID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	objective, quiz, err := services.FindOwnedObjective(db, objectiveID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy mục tiêu"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM question_edits WHERE question_id IN (SELECT id FROM questions WHERE objective_id = ?)", objectiveID).Error; err != nil {
			return err
		}
		if err := tx.Where("objective_id = ?", objectiveID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("objective_id = ?", objectiveID).Delete(&models.ObjectiveEdit{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(objective).Error; err != nil {
			return err
		}

		// Kế hoạch không được giữ dòng phân bổ trỏ tới mục tiêu đã xóa
		var plans []models.GenerationPlan
		if err := tx.Where("quiz_id = ?", quiz.ID).Find(&plans).Error; err != nil {
			return err
		}
		for i := range plans {
			res := tx.Where("plan_id = ? AND objective_id = ?", plans[i].ID, objectiveID).
				Delete(&models.PlanBreakdownItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}

			var remaining []models.PlanBreakdownItem
			if err := tx.Where("plan_id = ?", plans[i].ID).Find(&remaining).Error; err != nil {
				return err
			}
			total := services.SumBreakdown(remaining)
			if err := tx.Model(&plans[i]).Update("total_questions", total).Error; err != nil {
				return err
			}

			if err := tx.Where("plan_id = ?", plans[i].ID).Delete(&models.PlanDistributionItem{}).Error; err != nil {
				return err
			}
			dist := services.ComputeDistribution(plans[i].ID, remaining, total)
			if len(dist) > 0 {
				if err := tx.Create(&dist).Error; err != nil {
					return err
				}
			}
		}

		// Đánh lại thứ tự mục tiêu còn lại
		var remaining []models.LearningObjective
		if err := tx.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&remaining).Error; err != nil {
			return err
		}
		for i := range remaining {
			if remaining[i].Order != i {
				if err := tx.Model(&remaining[i]).Update("sort_order", i).Error; err != nil {
					return err
				}
			}
		}

		// Câu hỏi của đề cũng phải liên tục trở lại
		var questions []models.Question
		if err := tx.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&questions).Error; err != nil {
			return err
		}
		for i := range questions {
			if questions[i].Order != i {
				if err := tx.Model(&questions[i]).Update("sort_order", i).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa mục tiêu"})
		return
	}

	updated, err := services.RecomputeQuizState(db, quiz.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Xóa mục tiêu thành công",
		"quiz":    updated,
	})
}
