package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/services"
	"github.com/vnkhanh/quizforge-backend/utils"
)

// POST /api/quizzes/:id/exports
// Dựng file xlsx từ mục tiêu + câu hỏi, đẩy lên storage, ghi sổ xuất.
func RecordExport(c *gin.Context) {
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

	var objectives []models.LearningObjective
	db.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&objectives)

	var questions []models.Question
	db.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&questions)

	if len(questions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Đề chưa có câu hỏi nào để xuất"})
		return
	}

	data, err := services.BuildQuizXLSX(quiz, objectives, questions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo file xlsx", "details": err.Error()})
		return
	}

	filename := fmt.Sprintf("%s-%d.xlsx", quizID, time.Now().Unix())
	publicURL, err := utils.UploadBytesToSupabase(data, filename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload Supabase", "details": err.Error()})
		return
	}

	export := models.QuizExport{
		ID:        uuid.New(),
		QuizID:    quizID,
		Format:    "xlsx",
		FilePath:  publicURL,
		FileSize:  int64(len(data)),
		CreatedBy: userID,
	}
	if err := db.Create(&export).Error; err != nil {
		_ = utils.DeleteFileFromSupabase(publicURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được bản xuất"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Xuất đề thành công",
		"export":  export,
	})
}

// GET /api/exports/:id/download
// Tăng bộ đếm rồi chuyển hướng sang URL file.
func DownloadExport(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	exportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var export models.QuizExport
	if err := db.First(&export, "id = ? AND created_by = ?", exportID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bản xuất"})
		return
	}

	if err := db.Model(&export).
		Update("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật lượt tải"})
		return
	}

	c.Redirect(http.StatusFound, export.FilePath)
}

// GET /api/quizzes/:id/exports
func GetQuizExports(c *gin.Context) {
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

	if _, err := services.FindOwnedQuiz(db, quizID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	var exports []models.QuizExport
	db.Where("quiz_id = ?", quizID).Order("created_at DESC").Find(&exports)

	c.JSON(http.StatusOK, gin.H{"exports": exports})
}
