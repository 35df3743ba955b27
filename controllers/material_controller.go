package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/services"
	"github.com/vnkhanh/quizforge-backend/utils"
	"github.com/vnkhanh/quizforge-backend/ws"
)

// POST /api/materials/upload (multipart: file + folder_id)
func UploadMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	folderID, err := uuid.Parse(c.PostForm("folder_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_id không hợp lệ"})
		return
	}

	if _, err := services.FindOwnedFolder(db, folderID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy thư mục"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
		return
	}
	if file.Size > 20*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File vượt quá 20MB"})
		return
	}

	ext := filepath.Ext(file.Filename)
	if _, err := utils.GetInputTypeFromExt(ext); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Đọc toàn bộ file để tính checksum và trích xuất
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đọc file"})
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đọc file"})
		return
	}

	// === Chống trùng nội dung trong cùng thư mục ===
	checksum := utils.ChecksumBytes(data)
	var dup models.Material
	if err := db.Where("folder_id = ? AND checksum = ?", folderID, checksum).First(&dup).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "Tài liệu đã tồn tại trong thư mục",
			"material_id": dup.ID,
		})
		return
	}

	materialID := uuid.New()

	publicURL, err := utils.UploadFileToSupabase(file, materialID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload Supabase", "details": err.Error()})
		return
	}

	material := models.Material{
		ID:               materialID,
		FolderID:         folderID,
		CreatedBy:        userID,
		Name:             file.Filename,
		Type:             models.MaterialFile,
		FilePath:         publicURL,
		FileType:         strings.TrimPrefix(strings.ToLower(ext), "."),
		FileSize:         file.Size,
		Checksum:         checksum,
		ProcessingStatus: models.ProcessingPending,
	}
	if err := db.Create(&material).Error; err != nil {
		// Không giữ file mồ côi trên storage
		_ = utils.DeleteFileFromSupabase(publicURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tài liệu", "details": err.Error()})
		return
	}

	ws.BroadcastMaterialListChanged()

	// Trích xuất và làm sạch ngay trong request
	processMaterialContent(db, &material, data)

	db.First(&material, "id = ?", material.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Tải lên thành công",
		"material": material,
	})
}

type CreateURLMaterialInput struct {
	FolderID string `json:"folder_id" binding:"required"`
	URL      string `json:"url" binding:"required,url"`
	Name     string `json:"name"`
}

// POST /api/materials/url
func CreateURLMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input CreateURLMaterialInput
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

	// Checksum theo URL nguồn (nội dung chỉ biết sau khi xử lý)
	checksum := utils.ChecksumText(input.URL)
	var dup models.Material
	if err := db.Where("folder_id = ? AND checksum = ?", folderID, checksum).First(&dup).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "URL đã tồn tại trong thư mục",
			"material_id": dup.ID,
		})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = input.URL
	}

	material := models.Material{
		ID:               uuid.New(),
		FolderID:         folderID,
		CreatedBy:        userID,
		Name:             name,
		Type:             models.MaterialURL,
		SourceURL:        input.URL,
		Checksum:         checksum,
		ProcessingStatus: models.ProcessingPending,
	}
	if err := db.Create(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tài liệu", "details": err.Error()})
		return
	}

	ws.BroadcastMaterialListChanged()
	processMaterialContent(db, &material, nil)

	db.First(&material, "id = ?", material.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Thêm URL thành công",
		"material": material,
	})
}

type CreateTextMaterialInput struct {
	FolderID string `json:"folder_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// POST /api/materials/text
func CreateTextMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input CreateTextMaterialInput
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

	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nội dung không được trống"})
		return
	}

	checksum := utils.ChecksumText(content)
	var dup models.Material
	if err := db.Where("folder_id = ? AND checksum = ?", folderID, checksum).First(&dup).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "Nội dung đã tồn tại trong thư mục",
			"material_id": dup.ID,
		})
		return
	}

	material := models.Material{
		ID:               uuid.New(),
		FolderID:         folderID,
		CreatedBy:        userID,
		Name:             strings.TrimSpace(input.Name),
		Type:             models.MaterialText,
		Content:          content,
		FileSize:         int64(len(content)),
		Checksum:         checksum,
		ProcessingStatus: models.ProcessingPending,
	}
	if err := db.Create(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tài liệu", "details": err.Error()})
		return
	}

	ws.BroadcastMaterialListChanged()
	processMaterialContent(db, &material, nil)

	db.First(&material, "id = ?", material.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Thêm tài liệu thành công",
		"material": material,
	})
}

// Pipeline xử lý: pending -> processing -> completed | failed.
// fileData chỉ có khi vừa upload; các trường hợp khác tự lấy nội dung theo Type.
func processMaterialContent(db *gorm.DB, material *models.Material, fileData []byte) {
	db.Model(material).Updates(map[string]interface{}{
		"processing_status": models.ProcessingProcessing,
		"error_detail":      "",
	})
	ws.SendStatusUpdate(material.ID.String(), models.ProcessingProcessing, "")
	ws.BroadcastMaterialListChanged()

	rawText, err := resolveMaterialText(material, fileData)
	if err == nil {
		var cleaned string
		cleaned, err = services.CleanTextPipeline(rawText)
		if err == nil {
			now := time.Now()
			db.Model(material).Updates(map[string]interface{}{
				"processing_status": models.ProcessingCompleted,
				"extracted_text":    cleaned,
				"error_detail":      "",
				"processed_at":      &now,
			})
			ws.SendStatusUpdate(material.ID.String(), models.ProcessingCompleted, "")
			ws.BroadcastMaterialListChanged()
			return
		}
	}

	db.Model(material).Updates(map[string]interface{}{
		"processing_status": models.ProcessingFailed,
		"error_detail":      err.Error(),
	})
	ws.SendStatusUpdate(material.ID.String(), models.ProcessingFailed, err.Error())
	ws.BroadcastMaterialListChanged()
}

func resolveMaterialText(material *models.Material, fileData []byte) (string, error) {
	switch material.Type {
	case models.MaterialText:
		return material.Content, nil

	case models.MaterialURL:
		return services.FetchURLContent(material.SourceURL)

	case models.MaterialFile:
		if fileData == nil {
			// Xử lý lại: tải file về từ storage
			resp, err := http.Get(material.FilePath)
			if err != nil {
				return "", fmt.Errorf("không tải được file từ storage: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("không tải được file từ storage: HTTP %d", resp.StatusCode)
			}
			fileData, err = io.ReadAll(resp.Body)
			if err != nil {
				return "", err
			}
		}
		return services.ExtractFromBytes(material.FileType, fileData)

	default:
		return "", fmt.Errorf("loại tài liệu không được hỗ trợ: %s", material.Type)
	}
}

// POST /api/materials/:id/reprocess
func ReprocessMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	material, err := services.FindOwnedMaterial(db, materialID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	if material.ProcessingStatus != models.ProcessingFailed {
		c.JSON(http.StatusConflict, gin.H{"error": "Chỉ xử lý lại tài liệu đang ở trạng thái failed"})
		return
	}

	// Đưa về pending rồi chạy lại pipeline
	db.Model(material).Updates(map[string]interface{}{
		"processing_status": models.ProcessingPending,
		"error_detail":      "",
	})
	ws.SendStatusUpdate(material.ID.String(), models.ProcessingPending, "")

	processMaterialContent(db, material, nil)

	db.First(material, "id = ?", material.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Đã xử lý lại tài liệu",
		"material": material,
	})
}

// GET /api/materials?folder_id=...
func GetMaterials(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var materials []models.Material
	query := db.Model(&models.Material{}).Where("created_by = ?", userID)

	if folderIDStr := c.Query("folder_id"); folderIDStr != "" {
		folderID, err := uuid.Parse(folderIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "folder_id không hợp lệ"})
			return
		}
		query = query.Where("folder_id = ?", folderID)
	}

	// lọc theo trạng thái xử lý
	if status := c.Query("status"); status != "" {
		switch status {
		case models.ProcessingPending, models.ProcessingProcessing, models.ProcessingCompleted, models.ProcessingFailed:
			query = query.Where("processing_status = ?", status)
		}
	}

	// tìm kiếm theo tên
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	// phân trang
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số tài liệu"})
		return
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  materials,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/materials/:id
func GetMaterialDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	material, err := services.FindOwnedMaterial(db, materialID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	c.JSON(http.StatusOK, material)
}

// DELETE /api/materials/:id
func DeleteMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	material, err := services.FindOwnedMaterial(db, materialID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	// Gỡ liên kết với các đề trước khi xóa
	var affectedQuizIDs []uuid.UUID
	db.Raw("SELECT quiz_id FROM quiz_materials WHERE material_id = ?", materialID).Scan(&affectedQuizIDs)

	if err := db.Exec("DELETE FROM quiz_materials WHERE material_id = ?", materialID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi gỡ liên kết tài liệu"})
		return
	}

	if err := db.Delete(material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa tài liệu"})
		return
	}

	// Tiến độ của các đề liên quan có thể thay đổi
	for _, quizID := range affectedQuizIDs {
		_, _ = services.RecomputeQuizState(db, quizID)
	}

	// Xóa file trên storage, lỗi không chặn
	if material.Type == models.MaterialFile && material.FilePath != "" {
		_ = utils.DeleteFileFromSupabase(material.FilePath)
	}

	ws.BroadcastMaterialListChanged()

	c.JSON(http.StatusOK, gin.H{"message": "Xóa thành công"})
}
