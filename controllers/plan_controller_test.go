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

func (e *testEnv) generatePlan(t *testing.T, quizID uuid.UUID, approach string, qpl int) models.GenerationPlan {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/quizzes/"+quizID.String()+"/plans", gin.H{
		"approach":         approach,
		"questions_per_lo": qpl,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var plan models.GenerationPlan
	require.NoError(t, e.db.Order("created_at DESC").First(&plan, "quiz_id = ?", quizID).Error)
	return plan
}

func TestGeneratePlanValidation(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Kế hoạch")
	quiz := env.createQuiz(t, folder.ID, "Đề")

	// Chưa có mục tiêu -> 400
	w := env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/plans", gin.H{
		"approach":         "support",
		"questions_per_lo": 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.createObjective(t, quiz.ID, "Mục tiêu 1")

	// Approach lạ -> 400
	w = env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/plans", gin.H{
		"approach":         "ngẫu nhiên",
		"questions_per_lo": 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Ngoài khoảng 1..10 -> 400
	w = env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/plans", gin.H{
		"approach":         "support",
		"questions_per_lo": 11,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratePlanSupportScenario(t *testing.T) {
	// support, 2 mục tiêu, 3 câu/mục tiêu -> tổng 6, mỗi mục tiêu 1+1+1
	env := newTestEnv(t)
	folder := env.createFolder(t, "Scenario")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	env.createObjective(t, quiz.ID, "Mục tiêu 1")
	env.createObjective(t, quiz.ID, "Mục tiêu 2")

	plan := env.generatePlan(t, quiz.ID, "support", 3)
	assert.Equal(t, 6, plan.TotalQuestions)
	assert.Equal(t, models.PlanStatusDraft, plan.Status)

	var breakdown []models.PlanBreakdownItem
	env.db.Where("plan_id = ?", plan.ID).Find(&breakdown)
	require.Len(t, breakdown, 6)
	for _, item := range breakdown {
		assert.Equal(t, 1, item.Count)
		assert.NotEmpty(t, item.Reasoning)
	}

	var dist []models.PlanDistributionItem
	env.db.Where("plan_id = ?", plan.ID).Find(&dist)
	require.Len(t, dist, 3)
	for _, d := range dist {
		assert.Equal(t, 2, d.TotalCount)
		assert.Equal(t, 33, d.Percentage)
	}

	assert.Equal(t, models.QuizStatusPlanGenerated, env.reloadQuiz(t, quiz.ID).Status)
}

func TestApprovePlanExclusivity(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Duyệt")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	env.createObjective(t, quiz.ID, "Mục tiêu 1")

	planA := env.generatePlan(t, quiz.ID, "support", 3)
	planB := env.generatePlan(t, quiz.ID, "assess", 4)

	w := env.do(t, http.MethodPost, "/api/plans/"+planA.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	reloaded := env.reloadQuiz(t, quiz.ID)
	require.NotNil(t, reloaded.ActivePlanID)
	assert.Equal(t, planA.ID, *reloaded.ActivePlanID)
	assert.Equal(t, models.QuizStatusPlanApproved, reloaded.Status)

	// Duyệt B: A bị hạ về draft, B thành kế hoạch hiệu lực duy nhất
	w = env.do(t, http.MethodPost, "/api/plans/"+planB.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	reloaded = env.reloadQuiz(t, quiz.ID)
	require.NotNil(t, reloaded.ActivePlanID)
	assert.Equal(t, planB.ID, *reloaded.ActivePlanID)

	var a, b models.GenerationPlan
	require.NoError(t, env.db.First(&a, "id = ?", planA.ID).Error)
	require.NoError(t, env.db.First(&b, "id = ?", planB.ID).Error)
	assert.Equal(t, models.PlanStatusDraft, a.Status)
	assert.Nil(t, a.ApprovedAt)
	assert.Equal(t, models.PlanStatusApproved, b.Status)
	assert.NotNil(t, b.ApprovedAt)
}

func TestDeleteActivePlanRejected(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Xóa kế hoạch")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	env.createObjective(t, quiz.ID, "Mục tiêu 1")

	plan := env.generatePlan(t, quiz.ID, "support", 3)
	w := env.do(t, http.MethodPost, "/api/plans/"+plan.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Kế hoạch đang hiệu lực không xóa được
	w = env.do(t, http.MethodDelete, "/api/plans/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Kế hoạch nháp thì xóa được
	other := env.generatePlan(t, quiz.ID, "assess", 2)
	w = env.do(t, http.MethodDelete, "/api/plans/"+other.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdatePlanBreakdown(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Sửa kế hoạch")
	quiz := env.createQuiz(t, folder.ID, "Đề")
	objective := env.createObjective(t, quiz.ID, "Mục tiêu 1")

	plan := env.generatePlan(t, quiz.ID, "support", 3)
	assert.Equal(t, 3, plan.TotalQuestions)

	// objective_id lạ -> 400
	w := env.do(t, http.MethodPut, "/api/plans/"+plan.ID.String()+"/breakdown", gin.H{
		"breakdown": []gin.H{
			{"objective_id": uuid.NewString(), "question_type": models.QuestionEssay, "count": 2},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Sửa hợp lệ: tổng câu = tổng count mới, status = modified, có snapshot
	w = env.do(t, http.MethodPut, "/api/plans/"+plan.ID.String()+"/breakdown", gin.H{
		"description": "tăng tự luận",
		"breakdown": []gin.H{
			{"objective_id": objective.ID.String(), "question_type": models.QuestionMultipleChoice, "count": 4},
			{"objective_id": objective.ID.String(), "question_type": models.QuestionEssay, "count": 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.GenerationPlan
	require.NoError(t, env.db.First(&reloaded, "id = ?", plan.ID).Error)
	assert.Equal(t, 5, reloaded.TotalQuestions)
	assert.Equal(t, models.PlanStatusModified, reloaded.Status)

	var mods []models.PlanModification
	env.db.Where("plan_id = ?", plan.ID).Find(&mods)
	require.Len(t, mods, 1)
	assert.Equal(t, "tăng tự luận", mods[0].Description)
	assert.NotEmpty(t, mods[0].PreviousBreakdown)

	var dist []models.PlanDistributionItem
	env.db.Where("plan_id = ?", plan.ID).Find(&dist)
	require.Len(t, dist, 2)
	// round(100*4/5)=80, round(100*1/5)=20
	pct := map[string]int{}
	for _, d := range dist {
		pct[d.QuestionType] = d.Percentage
	}
	assert.Equal(t, 80, pct[models.QuestionMultipleChoice])
	assert.Equal(t, 20, pct[models.QuestionEssay])
}
