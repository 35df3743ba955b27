package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/quizforge-backend/models"
)

// Chạy trọn quy trình soạn đề bằng tay: thư mục -> tài liệu -> đề ->
// gán tài liệu -> mục tiêu -> kế hoạch -> duyệt -> câu hỏi, kiểm tra
// trạng thái đề tiến dần qua từng bước.
func TestAuthoringFlowEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	folder := env.createFolder(t, "Giải tích 1")
	m1 := env.seedCompletedMaterial(t, folder.ID, "Chương 1 - Giới hạn")
	m2 := env.seedCompletedMaterial(t, folder.ID, "Chương 2 - Đạo hàm")

	quiz := env.createQuiz(t, folder.ID, "Kiểm tra giữa kỳ")
	require.Equal(t, models.QuizStatusDraft, quiz.Status)

	// Gán tài liệu
	w := env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/materials", gin.H{
		"material_ids": []string{m1.ID.String(), m2.ID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code)

	quiz = env.reloadQuiz(t, quiz.ID)
	assert.True(t, quiz.MaterialsAssigned)
	assert.Equal(t, models.QuizStatusMaterialsAssigned, quiz.Status)

	// Mục tiêu học tập thủ công
	lo1 := env.createObjective(t, quiz.ID, "Tính giới hạn hàm một biến")
	lo2 := env.createObjective(t, quiz.ID, "Vận dụng quy tắc đạo hàm")

	quiz = env.reloadQuiz(t, quiz.ID)
	assert.True(t, quiz.ObjectivesSet)
	assert.Equal(t, models.QuizStatusObjectivesSet, quiz.Status)

	// Kế hoạch support, 3 câu mỗi mục tiêu
	plan := env.generatePlan(t, quiz.ID, "support", 3)
	assert.Equal(t, 6, plan.TotalQuestions)

	quiz = env.reloadQuiz(t, quiz.ID)
	assert.True(t, quiz.PlanGenerated)
	assert.Equal(t, models.QuizStatusPlanGenerated, quiz.Status)

	// Duyệt kế hoạch
	w = env.do(t, http.MethodPost, "/api/plans/"+plan.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	quiz = env.reloadQuiz(t, quiz.ID)
	assert.True(t, quiz.PlanApproved)
	require.NotNil(t, quiz.ActivePlanID)
	assert.Equal(t, plan.ID, *quiz.ActivePlanID)
	assert.Equal(t, models.QuizStatusPlanApproved, quiz.Status)

	// Soạn câu hỏi thủ công cho từng mục tiêu
	env.createQuestion(t, quiz.ID, lo1.ID, "lim x->0 sin(x)/x bằng bao nhiêu?")
	env.createQuestion(t, quiz.ID, lo2.ID, "Đạo hàm của x² là gì?")

	quiz = env.reloadQuiz(t, quiz.ID)
	assert.True(t, quiz.QuestionsGenerated)
	assert.Equal(t, models.QuizStatusCompleted, quiz.Status)

	// Tổng hợp chi tiết đề phải trả về đủ các collection
	w = env.do(t, http.MethodGet, "/api/quizzes/"+quiz.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Len(t, body["materials"], 2)
	assert.Len(t, body["objectives"], 2)
	assert.Len(t, body["questions"], 2)
	require.NotNil(t, body["active_plan"])

	// Gỡ toàn bộ tài liệu: cờ tài liệu tắt nhưng đề vẫn completed vì còn câu hỏi
	w = env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/materials", gin.H{
		"material_ids": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)

	quiz = env.reloadQuiz(t, quiz.ID)
	assert.False(t, quiz.MaterialsAssigned)
	assert.Equal(t, models.QuizStatusCompleted, quiz.Status)
}
