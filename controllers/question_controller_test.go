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

func (e *testEnv) createQuestion(t *testing.T, quizID, objectiveID uuid.UUID, text string) models.Question {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/quizzes/"+quizID.String()+"/questions", gin.H{
		"objective_id":   objectiveID.String(),
		"type":           models.QuestionMultipleChoice,
		"text":           text,
		"content":        `{"options": [{"text": "A", "is_correct": true}, {"text": "B", "is_correct": false}]}`,
		"correct_answer": "A",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var question models.Question
	require.NoError(t, e.db.First(&question, "quiz_id = ? AND text = ?", quizID, text).Error)
	return question
}

func TestCreateQuestionValidation(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Câu hỏi")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	objective := env.createObjective(t, quiz.ID, "Mục tiêu 1")

	// Loại lạ -> 400
	w := env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/questions", gin.H{
		"objective_id": objective.ID.String(),
		"type":         "matching",
		"text":         "Câu hỏi?",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Mục tiêu của đề khác -> 400
	otherQuiz := env.createQuiz(t, folder.ID, "Đề khác")
	otherObjective := env.createObjective(t, otherQuiz.ID, "Mục tiêu ngoài")
	w = env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/questions", gin.H{
		"objective_id": otherObjective.ID.String(),
		"type":         models.QuestionEssay,
		"text":         "Câu hỏi?",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Hợp lệ: thứ tự 0-based, khó mặc định theo đề, đề chuyển completed
	q := env.createQuestion(t, quiz.ID, objective.ID, "Câu đầu tiên?")
	assert.Equal(t, 0, q.Order)
	assert.Equal(t, "medium", q.Difficulty)
	assert.Equal(t, models.ReviewPending, q.ReviewStatus)
	assert.Equal(t, models.SourceManual, q.Source)
	assert.Equal(t, models.QuizStatusCompleted, env.reloadQuiz(t, quiz.ID).Status)
}

func TestEditQuestionAppendsHistory(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Sửa câu hỏi")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	objective := env.createObjective(t, quiz.ID, "Mục tiêu 1")
	question := env.createQuestion(t, quiz.ID, objective.ID, "Bản gốc?")

	w := env.do(t, http.MethodPut, "/api/questions/"+question.ID.String(), gin.H{
		"text":           "Bản sửa?",
		"correct_answer": "B",
		"description":    "đáp án sai",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var edits []models.QuestionEdit
	env.db.Where("question_id = ?", question.ID).Find(&edits)
	require.Len(t, edits, 1)
	assert.Equal(t, "Bản gốc?", edits[0].PreviousText)
	assert.Equal(t, "A", edits[0].PreviousCorrectAnswer)

	var reloaded models.Question
	require.NoError(t, env.db.First(&reloaded, "id = ?", question.ID).Error)
	assert.Equal(t, "Bản sửa?", reloaded.Text)
	assert.Equal(t, "B", reloaded.CorrectAnswer)
}

func TestSetReviewStatusUnconstrained(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Duyệt câu hỏi")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	objective := env.createObjective(t, quiz.ID, "Mục tiêu 1")
	question := env.createQuestion(t, quiz.ID, objective.ID, "Câu hỏi?")

	// Chuyển tự do: pending -> rejected -> approved -> needs-review
	for _, status := range []string{
		models.ReviewRejected,
		models.ReviewApproved,
		models.ReviewNeedsReview,
	} {
		w := env.do(t, http.MethodPatch, "/api/questions/"+question.ID.String()+"/review", gin.H{"status": status})
		require.Equal(t, http.StatusOK, w.Code)

		var reloaded models.Question
		require.NoError(t, env.db.First(&reloaded, "id = ?", question.ID).Error)
		assert.Equal(t, status, reloaded.ReviewStatus)
	}

	// Trạng thái lạ -> 400
	w := env.do(t, http.MethodPatch, "/api/questions/"+question.ID.String()+"/review", gin.H{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteQuestionResequences(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Xóa câu hỏi")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	objective := env.createObjective(t, quiz.ID, "Mục tiêu 1")

	q0 := env.createQuestion(t, quiz.ID, objective.ID, "Câu 0?")
	q1 := env.createQuestion(t, quiz.ID, objective.ID, "Câu 1?")
	q2 := env.createQuestion(t, quiz.ID, objective.ID, "Câu 2?")

	w := env.do(t, http.MethodDelete, "/api/questions/"+q1.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var remaining []models.Question
	env.db.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&remaining)
	require.Len(t, remaining, 2)
	assert.Equal(t, q0.ID, remaining[0].ID)
	assert.Equal(t, 0, remaining[0].Order)
	assert.Equal(t, q2.ID, remaining[1].ID)
	assert.Equal(t, 1, remaining[1].Order)
}

func TestReorderQuestions(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Sắp xếp câu hỏi")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	objective := env.createObjective(t, quiz.ID, "Mục tiêu 1")

	q0 := env.createQuestion(t, quiz.ID, objective.ID, "Câu 0?")
	q1 := env.createQuestion(t, quiz.ID, objective.ID, "Câu 1?")

	// Trùng id -> 400
	w := env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/questions/reorder", gin.H{
		"ids": []string{q0.ID.String(), q0.ID.String()},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/quizzes/"+quiz.ID.String()+"/questions/reorder", gin.H{
		"ids": []string{q1.ID.String(), q0.ID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var ordered []models.Question
	env.db.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&ordered)
	require.Len(t, ordered, 2)
	assert.Equal(t, q1.ID, ordered[0].ID)
	assert.Equal(t, q0.ID, ordered[1].ID)
}

func TestGenerateQuestionsRequiresActivePlan(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Sinh câu hỏi")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	env.createObjective(t, quiz.ID, "Mục tiêu 1")

	plan := env.generatePlan(t, quiz.ID, "support", 3)

	// Kế hoạch chưa duyệt -> 409
	w := env.do(t, http.MethodPost, "/api/plans/"+plan.ID.String()+"/generate-questions", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGenerateQuestionsFailureLeavesRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("gọi retry Gemini có chờ giữa các lần")
	}

	env := newTestEnv(t)
	folder := env.createFolder(t, "Sinh thất bại")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	env.createObjective(t, quiz.ID, "Mục tiêu 1")

	plan := env.generatePlan(t, quiz.ID, "support", 3)
	w := env.do(t, http.MethodPost, "/api/plans/"+plan.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Không có GEMINI_API_KEY: mọi lần gọi đều lỗi -> 502,
	// nội dung đề không đổi nhưng nhật ký có bản ghi thất bại
	w = env.do(t, http.MethodPost, "/api/plans/"+plan.ID.String()+"/generate-questions", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var questionCount int64
	env.db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount)
	assert.Zero(t, questionCount)

	var records []models.GenerationRecord
	env.db.Where("quiz_id = ?", quiz.ID).Find(&records)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	assert.NotEmpty(t, records[0].ErrorMessage)
	assert.Equal(t, plan.ID, *records[0].PlanID)

	// Kế hoạch vẫn approved, chưa chuyển used
	var reloaded models.GenerationPlan
	require.NoError(t, env.db.First(&reloaded, "id = ?", plan.ID).Error)
	assert.Equal(t, models.PlanStatusApproved, reloaded.Status)
}
