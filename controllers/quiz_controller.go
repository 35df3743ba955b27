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

type CreateQuizInput struct {
	FolderID          string `json:"folder_id" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	DefaultDifficulty string `json:"default_difficulty"`
	Language          string `json:"language"`
}

func validDifficulty(d string) bool {
	return d == "easy" || d == "medium" || d == "hard"
}

// POST /api/quizzes
func CreateQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input CreateQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folderID, err := uuid.Parse(input.FolderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_id không hợp lệ"})
		return
	}
	if _, err := services.FindOwnedFolder(db, folderID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy thư mục"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên đề không được trống"})
		return
	}

	// === Trùng tên trong cùng thư mục ===
	// So sánh trong Go: LOWER của DB chỉ gập chữ ASCII, bỏ sót tiếng Việt
	var names []string
	db.Model(&models.Quiz{}).Where("folder_id = ?", folderID).Pluck("name", &names)
	for _, existing := range names {
		if strings.EqualFold(existing, name) {
			c.JSON(http.StatusConflict, gin.H{"error": "Tên đề đã tồn tại trong thư mục"})
			return
		}
	}

	difficulty := input.DefaultDifficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	if !validDifficulty(difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Độ khó không hợp lệ (easy|medium|hard)"})
		return
	}
	language := input.Language
	if language == "" {
		language = "vi"
	}

	quiz := models.Quiz{
		ID:                uuid.New(),
		FolderID:          folderID,
		Name:              name,
		Description:       input.Description,
		CreatedBy:         userID,
		DefaultDifficulty: difficulty,
		Language:          language,
		Status:            models.QuizStatusDraft,
	}
	if err := db.Create(&quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo đề"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo đề thành công",
		"quiz":    quiz,
	})
}

// GET /api/quizzes
func GetQuizzes(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var quizzes []models.Quiz
	query := db.Model(&models.Quiz{}).Where("created_by = ?", userID)

	if folderIDStr := c.Query("folder_id"); folderIDStr != "" {
		folderID, err := uuid.Parse(folderIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "folder_id không hợp lệ"})
			return
		}
		query = query.Where("folder_id = ?", folderID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số đề"})
		return
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&quizzes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách đề"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  quizzes,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/quizzes/:id
// Lắp read-model trong handler: gốc + từng collection con truy vấn riêng.
func GetQuizDetail(c *gin.Context) {
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

	quiz, err := services.FindOwnedQuiz(db, quizID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	var materials []models.Material
	db.Joins("JOIN quiz_materials ON quiz_materials.material_id = materials.id").
		Where("quiz_materials.quiz_id = ?", quizID).
		Find(&materials)

	var objectives []models.LearningObjective
	db.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&objectives)

	var plans []models.GenerationPlan
	db.Preload("Breakdown").Preload("Distribution").
		Where("quiz_id = ?", quizID).Order("created_at DESC").Find(&plans)

	var activePlan *models.GenerationPlan
	if quiz.ActivePlanID != nil {
		for i := range plans {
			if plans[i].ID == *quiz.ActivePlanID {
				activePlan = &plans[i]
				break
			}
		}
	}

	var questions []models.Question
	db.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&questions)

	var records []models.GenerationRecord
	db.Where("quiz_id = ?", quizID).Order("created_at DESC").Find(&records)

	c.JSON(http.StatusOK, gin.H{
		"quiz":               quiz,
		"materials":          materials,
		"objectives":         objectives,
		"plans":              plans,
		"active_plan":        activePlan,
		"questions":          questions,
		"generation_records": records,
	})
}

type UpdateQuizSettingsInput struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	DefaultDifficulty string  `json:"default_difficulty"`
	Language          string  `json:"language"`
}

// PUT /api/quizzes/:id
func UpdateQuizSettings(c *gin.Context) {
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

	var input UpdateQuizSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ"})
		return
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	quiz, err := services.FindOwnedQuiz(db, quizID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	if input.Name != "" {
		name := strings.TrimSpace(input.Name)
		var names []string
		db.Model(&models.Quiz{}).
			Where("folder_id = ? AND id <> ?", quiz.FolderID, quizID).
			Pluck("name", &names)
		for _, existing := range names {
			if strings.EqualFold(existing, name) {
				c.JSON(http.StatusConflict, gin.H{"error": "Tên đề đã tồn tại trong thư mục"})
				return
			}
		}
		quiz.Name = name
	}
	if input.Description != nil {
		quiz.Description = *input.Description
	}
	if input.DefaultDifficulty != "" {
		if !validDifficulty(input.DefaultDifficulty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Độ khó không hợp lệ (easy|medium|hard)"})
			return
		}
		quiz.DefaultDifficulty = input.DefaultDifficulty
	}
	if input.Language != "" {
		quiz.Language = input.Language
	}

	if err := db.Save(quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cập nhật đề thất bại"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật thành công",
		"quiz":    quiz,
	})
}

// DELETE /api/quizzes/:id
// Xóa con trước, gốc sau, trong một transaction.
func DeleteQuiz(c *gin.Context) {
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

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	quiz, err := services.FindOwnedQuiz(db, quizID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM question_edits WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = ?)", quizID).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM objective_edits WHERE objective_id IN (SELECT id FROM learning_objectives WHERE quiz_id = ?)", quizID).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.LearningObjective{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM plan_breakdown_items WHERE plan_id IN (SELECT id FROM generation_plans WHERE quiz_id = ?)", quizID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM plan_distribution_items WHERE plan_id IN (SELECT id FROM generation_plans WHERE quiz_id = ?)", quizID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM plan_modifications WHERE plan_id IN (SELECT id FROM generation_plans WHERE quiz_id = ?)", quizID).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.GenerationPlan{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.GenerationRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.QuizExport{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM quiz_materials WHERE quiz_id = ?", quizID).Error; err != nil {
			return err
		}
		return tx.Delete(quiz).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa đề", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa đề thành công"})
}

type AssignMaterialsInput struct {
	MaterialIDs []string `json:"material_ids" binding:"required"`
}

// PUT /api/quizzes/:id/materials
// Gán lại toàn bộ tập tài liệu của đề.
func AssignMaterialsToQuiz(c *gin.Context) {
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

	var input AssignMaterialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	quiz, err := services.FindOwnedQuiz(db, quizID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	// Kiểm tra từng tài liệu: thuộc chủ sở hữu, cùng thư mục, đã xử lý xong
	materials := make([]models.Material, 0, len(input.MaterialIDs))
	for _, idStr := range input.MaterialIDs {
		materialID, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "material_id không hợp lệ: " + idStr})
			return
		}
		material, err := services.FindOwnedMaterial(db, materialID, userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu: " + idStr})
			return
		}
		if material.FolderID != quiz.FolderID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tài liệu không cùng thư mục với đề: " + idStr})
			return
		}
		if material.ProcessingStatus != models.ProcessingCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tài liệu chưa xử lý xong: " + idStr})
			return
		}
		materials = append(materials, *material)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM quiz_materials WHERE quiz_id = ?", quizID).Error; err != nil {
			return err
		}
		for _, m := range materials {
			if err := tx.Exec("INSERT INTO quiz_materials (quiz_id, material_id) VALUES (?, ?)", quizID, m.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể gán tài liệu", "details": err.Error()})
		return
	}

	updated, err := services.RecomputeQuizState(db, quizID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Gán tài liệu thành công",
		"quiz":      updated,
		"materials": materials,
	})
}
