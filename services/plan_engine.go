package services

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/vnkhanh/quizforge-backend/models"
)

// Các hướng tiếp cận sư phạm khi lập kế hoạch tạo câu hỏi
const (
	ApproachSupport       = "support"       // củng cố kiến thức nền
	ApproachAssess        = "assess"        // kiểm tra đánh giá
	ApproachChallenge     = "challenge"     // nâng cao, tư duy sâu
	ApproachComprehensive = "comprehensive" // bao phủ toàn diện
)

const (
	MinQuestionsPerLO = 1
	MaxQuestionsPerLO = 10
)

// Tỷ lệ % mỗi loại câu hỏi trên quota của một mục tiêu, cố định theo approach
var approachDistribution = map[string]map[string]int{
	ApproachSupport: {
		models.QuestionMultipleChoice: 40,
		models.QuestionTrueFalse:      30,
		models.QuestionFillInBlank:    30,
	},
	ApproachAssess: {
		models.QuestionMultipleChoice: 50,
		models.QuestionShortAnswer:    30,
		models.QuestionEssay:          20,
	},
	ApproachChallenge: {
		models.QuestionMultipleChoice: 30,
		models.QuestionShortAnswer:    30,
		models.QuestionEssay:          40,
	},
	ApproachComprehensive: {
		models.QuestionMultipleChoice: 30,
		models.QuestionTrueFalse:      20,
		models.QuestionShortAnswer:    20,
		models.QuestionFillInBlank:    15,
		models.QuestionEssay:          15,
	},
}

// Lý do chọn loại câu hỏi, tra cứu tĩnh theo (loại, approach)
var reasoningTable = map[string]map[string]string{
	models.QuestionMultipleChoice: {
		ApproachSupport:       "Trắc nghiệm nhiều lựa chọn giúp người học ôn lại khái niệm cơ bản với phản hồi nhanh.",
		ApproachAssess:        "Trắc nghiệm nhiều lựa chọn cho phép chấm điểm khách quan và bao phủ rộng nội dung.",
		ApproachChallenge:     "Trắc nghiệm với phương án nhiễu tinh vi buộc người học phân biệt các khái niệm gần nhau.",
		ApproachComprehensive: "Trắc nghiệm nhiều lựa chọn là nền tảng kiểm tra đều các mức độ nhận thức.",
	},
	models.QuestionTrueFalse: {
		ApproachSupport:       "Câu đúng/sai giúp kiểm tra nhanh việc ghi nhớ các mệnh đề then chốt.",
		ApproachComprehensive: "Câu đúng/sai bổ sung lớp kiểm tra nhanh cho các dữ kiện quan trọng.",
	},
	models.QuestionShortAnswer: {
		ApproachAssess:        "Câu trả lời ngắn yêu cầu người học tự diễn đạt thay vì chỉ nhận diện đáp án.",
		ApproachChallenge:     "Câu trả lời ngắn buộc người học vận dụng kiến thức để giải thích, không đoán được.",
		ApproachComprehensive: "Câu trả lời ngắn đo khả năng diễn đạt chính xác thuật ngữ và khái niệm.",
	},
	models.QuestionFillInBlank: {
		ApproachSupport:       "Điền khuyết củng cố thuật ngữ và công thức quan trọng trong ngữ cảnh.",
		ApproachComprehensive: "Điền khuyết kiểm tra trí nhớ chủ động với gợi ý từ ngữ cảnh câu.",
	},
	models.QuestionEssay: {
		ApproachAssess:        "Tự luận đánh giá khả năng tổng hợp và lập luận có cấu trúc của người học.",
		ApproachChallenge:     "Tự luận mở đòi hỏi phân tích sâu và liên hệ nhiều mục tiêu với nhau.",
		ApproachComprehensive: "Tự luận bảo đảm kế hoạch có phần đánh giá tư duy bậc cao.",
	},
}

// ValidApproach kiểm tra approach có nằm trong bộ cố định không
func ValidApproach(approach string) bool {
	_, ok := approachDistribution[approach]
	return ok
}

// ValidQuestionType kiểm tra loại câu hỏi có nằm trong bộ hỗ trợ không
func ValidQuestionType(questionType string) bool {
	switch questionType {
	case models.QuestionMultipleChoice,
		models.QuestionTrueFalse,
		models.QuestionShortAnswer,
		models.QuestionFillInBlank,
		models.QuestionEssay:
		return true
	}
	return false
}

// ReasoningFor trả về lý do tĩnh cho (loại câu hỏi, approach)
func ReasoningFor(questionType, approach string) string {
	if byApproach, ok := reasoningTable[questionType]; ok {
		if r, ok := byApproach[approach]; ok {
			return r
		}
	}
	return fmt.Sprintf("Loại câu hỏi %s phù hợp với hướng tiếp cận %s.", questionType, approach)
}

// BuildBreakdown tính phân bổ loại câu hỏi cho từng mục tiêu.
// count(loại) = round(%/100 * questionsPerLO); loại có count 0 bị bỏ qua.
func BuildBreakdown(planID uuid.UUID, objectives []models.LearningObjective, approach string, questionsPerLO int) []models.PlanBreakdownItem {
	table := approachDistribution[approach]
	items := []models.PlanBreakdownItem{}

	// Duyệt theo thứ tự cố định để kết quả ổn định
	types := []string{
		models.QuestionMultipleChoice,
		models.QuestionTrueFalse,
		models.QuestionShortAnswer,
		models.QuestionFillInBlank,
		models.QuestionEssay,
	}

	for _, obj := range objectives {
		for _, qt := range types {
			pct, ok := table[qt]
			if !ok {
				continue
			}
			count := int(math.Round(float64(pct) / 100.0 * float64(questionsPerLO)))
			if count == 0 {
				continue
			}
			items = append(items, models.PlanBreakdownItem{
				ID:           uuid.New(),
				PlanID:       planID,
				ObjectiveID:  obj.ID,
				QuestionType: qt,
				Count:        count,
				Reasoning:    ReasoningFor(qt, approach),
			})
		}
	}
	return items
}

// ComputeDistribution tổng hợp breakdown theo loại câu hỏi trên toàn đề.
// percentage được làm tròn độc lập cho từng loại từ totalQuestions nên tổng
// các % có thể không đúng 100 — chấp nhận, chỉ dùng để hiển thị.
func ComputeDistribution(planID uuid.UUID, breakdown []models.PlanBreakdownItem, totalQuestions int) []models.PlanDistributionItem {
	totals := map[string]int{}
	order := []string{}
	for _, item := range breakdown {
		if _, seen := totals[item.QuestionType]; !seen {
			order = append(order, item.QuestionType)
		}
		totals[item.QuestionType] += item.Count
	}

	dist := []models.PlanDistributionItem{}
	for _, qt := range order {
		pct := 0
		if totalQuestions > 0 {
			pct = int(math.Round(100.0 * float64(totals[qt]) / float64(totalQuestions)))
		}
		dist = append(dist, models.PlanDistributionItem{
			ID:           uuid.New(),
			PlanID:       planID,
			QuestionType: qt,
			TotalCount:   totals[qt],
			Percentage:   pct,
		})
	}
	return dist
}

// SumBreakdown cộng toàn bộ count trong breakdown
func SumBreakdown(breakdown []models.PlanBreakdownItem) int {
	total := 0
	for _, item := range breakdown {
		total += item.Count
	}
	return total
}
