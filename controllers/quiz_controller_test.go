package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/quizforge-backend/models"
)

func TestCreateQuizDuplicateNameInFolder(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Triết học")

	env.createQuiz(t, folder.ID, "Đề cuối kỳ")

	w := env.do(t, http.MethodPost, "/api/quizzes", gin.H{
		"folder_id": folder.ID.String(),
		"name":      "đề cuối kỳ",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Cùng tên nhưng khác thư mục thì được
	folder2 := env.createFolder(t, "Triết học 2")
	w = env.do(t, http.MethodPost, "/api/quizzes", gin.H{
		"folder_id": folder2.ID.String(),
		"name":      "Đề cuối kỳ",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestQuizStartsAsDraft(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Khởi tạo")
	quiz := env.createQuiz(t, folder.ID, "Đề mới")

	assert.Equal(t, models.QuizStatusDraft, quiz.Status)
	assert.False(t, quiz.MaterialsAssigned)
	assert.Nil(t, quiz.ActivePlanID)
}

func TestAssignMaterialsValidation(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Gán tài liệu")
	quiz := env.createQuiz(t, folder.ID, "Đề")

	// Tài liệu chưa xử lý xong không gán được
	pending := models.Material{
		ID:               uuid.New(),
		FolderID:         folder.ID,
		CreatedBy:        env.user.ID,
		Name:             "Đang chờ.txt",
		Type:             models.MaterialText,
		Content:          "x",
		Checksum:         "deadbeef",
		ProcessingStatus: models.ProcessingPending,
	}
	require.NoError(t, env.db.Create(&pending).Error)

	w := env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/materials", gin.H{
		"material_ids": []string{pending.ID.String()},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Tài liệu ở thư mục khác cũng không gán được
	otherFolder := env.createFolder(t, "Thư mục khác")
	foreign := env.seedCompletedMaterial(t, otherFolder.ID, "Ngoài.txt")
	w = env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/materials", gin.H{
		"material_ids": []string{foreign.ID.String()},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Tài liệu hợp lệ: gán xong đề chuyển materials-assigned
	ok := env.seedCompletedMaterial(t, folder.ID, "Hợp lệ.txt")
	w = env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/materials", gin.H{
		"material_ids": []string{ok.ID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.QuizStatusMaterialsAssigned, env.reloadQuiz(t, quiz.ID).Status)

	// Gán lại danh sách rỗng -> quay về draft
	w = env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/materials", gin.H{
		"material_ids": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.QuizStatusDraft, env.reloadQuiz(t, quiz.ID).Status)
}

func TestUpdateQuizSettings(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Cài đặt")
	quiz := env.createQuiz(t, folder.ID, "Đề")

	w := env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String(), gin.H{
		"default_difficulty": "hard",
		"language":           "en",
	})
	require.Equal(t, http.StatusOK, w.Code)

	reloaded := env.reloadQuiz(t, quiz.ID)
	assert.Equal(t, "hard", reloaded.DefaultDifficulty)
	assert.Equal(t, "en", reloaded.Language)

	w = env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String(), gin.H{
		"default_difficulty": "impossible",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteQuizCascades(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Xóa đề")
	quiz := env.createQuiz(t, folder.ID, "Đề sẽ xóa")

	// Dựng đủ con: mục tiêu, kế hoạch, câu hỏi
	w := env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/objectives", gin.H{
		"text": "Trình bày được khái niệm A",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/plans", gin.H{
		"approach":         "support",
		"questions_per_lo": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/api/quizzes/"+quiz.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.LearningObjective{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Zero(t, count)
	env.db.Model(&models.GenerationPlan{}).Where("quiz_id = ?", quiz.ID).Count(&count)
	assert.Zero(t, count)
	env.db.Table("plan_breakdown_items").Count(&count)
	assert.Zero(t, count)
}
