package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/quizforge-backend/models"
)

func makeObjectives(n int) []models.LearningObjective {
	objs := make([]models.LearningObjective, n)
	for i := range objs {
		objs[i] = models.LearningObjective{ID: uuid.New(), Order: i}
	}
	return objs
}

func TestValidApproach(t *testing.T) {
	assert.True(t, ValidApproach(ApproachSupport))
	assert.True(t, ValidApproach(ApproachAssess))
	assert.True(t, ValidApproach(ApproachChallenge))
	assert.True(t, ValidApproach(ApproachComprehensive))
	assert.False(t, ValidApproach("random"))
	assert.False(t, ValidApproach(""))
}

func TestValidQuestionType(t *testing.T) {
	assert.True(t, ValidQuestionType(models.QuestionMultipleChoice))
	assert.True(t, ValidQuestionType(models.QuestionEssay))
	assert.False(t, ValidQuestionType("matching"))
}

func TestBuildBreakdownSupportScenario(t *testing.T) {
	// 2 mục tiêu, 3 câu/mục tiêu, approach support:
	// 40% -> 1 trắc nghiệm, 30% -> 1 đúng/sai, 30% -> 1 điền khuyết mỗi mục tiêu
	planID := uuid.New()
	objectives := makeObjectives(2)

	breakdown := BuildBreakdown(planID, objectives, ApproachSupport, 3)

	require.Len(t, breakdown, 6)
	assert.Equal(t, 6, SumBreakdown(breakdown))

	perObjective := map[uuid.UUID]int{}
	for _, item := range breakdown {
		assert.Equal(t, planID, item.PlanID)
		assert.Equal(t, 1, item.Count)
		assert.NotEmpty(t, item.Reasoning)
		perObjective[item.ObjectiveID]++
	}
	for _, obj := range objectives {
		assert.Equal(t, 3, perObjective[obj.ID])
	}
}

func TestBuildBreakdownOmitsZeroCounts(t *testing.T) {
	// qpl=1 với comprehensive: 30%->0.3->0, 20%->0.2->0,... mọi loại bị làm
	// tròn về 0 đều không được tạo dòng
	breakdown := BuildBreakdown(uuid.New(), makeObjectives(1), ApproachComprehensive, 1)
	for _, item := range breakdown {
		assert.Greater(t, item.Count, 0)
	}
}

func TestBuildBreakdownAssess(t *testing.T) {
	// qpl=10 với assess: 50%->5 trắc nghiệm, 30%->3 trả lời ngắn, 20%->2 tự luận
	breakdown := BuildBreakdown(uuid.New(), makeObjectives(1), ApproachAssess, 10)

	counts := map[string]int{}
	for _, item := range breakdown {
		counts[item.QuestionType] = item.Count
	}
	assert.Equal(t, 5, counts[models.QuestionMultipleChoice])
	assert.Equal(t, 3, counts[models.QuestionShortAnswer])
	assert.Equal(t, 2, counts[models.QuestionEssay])
	assert.Equal(t, 10, SumBreakdown(breakdown))
}

func TestComputeDistribution(t *testing.T) {
	planID := uuid.New()
	objectives := makeObjectives(2)
	breakdown := BuildBreakdown(planID, objectives, ApproachSupport, 3)

	dist := ComputeDistribution(planID, breakdown, 6)
	require.Len(t, dist, 3)

	for _, d := range dist {
		assert.Equal(t, 2, d.TotalCount)
		// round(100*2/6) = 33 — từng loại làm tròn độc lập, tổng 99 chấp nhận được
		assert.Equal(t, 33, d.Percentage)
	}
}

func TestComputeDistributionZeroTotal(t *testing.T) {
	dist := ComputeDistribution(uuid.New(), nil, 0)
	assert.Empty(t, dist)
}

func TestReasoningForFixedTable(t *testing.T) {
	r1 := ReasoningFor(models.QuestionMultipleChoice, ApproachSupport)
	r2 := ReasoningFor(models.QuestionMultipleChoice, ApproachSupport)
	assert.Equal(t, r1, r2)
	assert.NotEmpty(t, r1)

	// Cặp ngoài bảng vẫn có câu mặc định
	fallback := ReasoningFor(models.QuestionEssay, ApproachSupport)
	assert.NotEmpty(t, fallback)
}
