package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/services"
)

// Input cho Create / Update
type CreateFolderInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateFolderInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// POST /api/folders
func CreateFolder(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateFolderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên thư mục bắt buộc"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên thư mục không được trống"})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	// === Kiểm tra trùng tên trong phạm vi chủ sở hữu ===
	// So sánh trong Go: LOWER của DB chỉ gập chữ ASCII, bỏ sót tiếng Việt
	var names []string
	db.Model(&models.Folder{}).Where("created_by = ?", userID).Pluck("name", &names)
	for _, existing := range names {
		if strings.EqualFold(existing, name) {
			c.JSON(http.StatusConflict, gin.H{"error": "Tên thư mục đã tồn tại"})
			return
		}
	}

	folder := models.Folder{
		ID:          uuid.New(),
		Name:        name,
		Description: input.Description,
		CreatedBy:   userID,
		Slug:        slug.Make(name),
	}

	if err := db.Create(&folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo thư mục"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo thư mục thành công",
		"folder":  folder,
	})
}

// GET /api/folders
func GetFolders(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var folders []models.Folder
	query := db.Model(&models.Folder{}).Where("created_by = ?", userID)

	// Tìm kiếm theo tên thư mục
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	// Phân trang
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số thư mục"})
		return
	}

	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&folders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách thư mục"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  folders,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/folders/:id
func GetFolderDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	folder, err := services.FindOwnedFolder(db, folderID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy thư mục"})
		return
	}

	if err := db.
		Preload("Materials", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Quizzes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(folder, "id = ?", folderID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tải dữ liệu thư mục"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"folder":    folder,
		"materials": folder.Materials,
		"quizzes":   folder.Quizzes,
	})
}

// PUT /api/folders/:id
func UpdateFolder(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input UpdateFolderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ"})
		return
	}

	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	folder, err := services.FindOwnedFolder(db, folderID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy thư mục"})
		return
	}

	if input.Name != "" {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tên thư mục không được trống"})
			return
		}

		var names []string
		db.Model(&models.Folder{}).
			Where("created_by = ? AND id <> ?", userID, folderID).
			Pluck("name", &names)
		for _, existing := range names {
			if strings.EqualFold(existing, name) {
				c.JSON(http.StatusConflict, gin.H{"error": "Tên thư mục đã tồn tại"})
				return
			}
		}

		folder.Name = name
		folder.Slug = slug.Make(name)
	}
	if input.Description != nil {
		folder.Description = *input.Description
	}

	if err := db.Save(folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cập nhật thư mục thất bại"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật thành công",
		"folder":  folder,
	})
}

// DELETE /api/folders/:id
func DeleteFolder(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	folder, err := services.FindOwnedFolder(db, folderID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy thư mục"})
		return
	}

	// Chỉ xóa thư mục rỗng
	var materialCount int64
	if err := db.Model(&models.Material{}).Where("folder_id = ?", folderID).Count(&materialCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi kiểm tra tài liệu của thư mục"})
		return
	}
	var quizCount int64
	if err := db.Model(&models.Quiz{}).Where("folder_id = ?", folderID).Count(&quizCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi kiểm tra đề của thư mục"})
		return
	}

	if materialCount > 0 || quizCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Không thể xóa thư mục vì còn %d tài liệu và %d đề trắc nghiệm", materialCount, quizCount),
		})
		return
	}

	if err := db.Delete(folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi xóa thư mục"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa thư mục thành công"})
}

// GET /api/folders/:id/stats
func GetFolderStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	folder, err := services.FindOwnedFolder(db, folderID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy thư mục"})
		return
	}

	var materialCount, quizCount, completedCount int64
	db.Model(&models.Material{}).Where("folder_id = ?", folderID).Count(&materialCount)
	db.Model(&models.Quiz{}).Where("folder_id = ?", folderID).Count(&quizCount)
	db.Model(&models.Quiz{}).Where("folder_id = ? AND status = ?", folderID, models.QuizStatusCompleted).Count(&completedCount)

	var totalQuestions int64
	db.Model(&models.Question{}).
		Joins("JOIN quizzes ON quizzes.id = questions.quiz_id").
		Where("quizzes.folder_id = ?", folderID).
		Count(&totalQuestions)

	c.JSON(http.StatusOK, gin.H{
		"folder": gin.H{
			"id":   folder.ID,
			"name": folder.Name,
			"slug": folder.Slug,
		},
		"material_count":    materialCount,
		"quiz_count":        quizCount,
		"completed_quizzes": completedCount,
		"total_questions":   totalQuestions,
	})
}
