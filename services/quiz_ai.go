package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Model Gemini dùng cho toàn bộ pipeline soạn đề
const GeminiModelName = "gemini-2.0-flash"

// Kết quả sinh mục tiêu học tập từ AI
type GeneratedObjective struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Kết quả sinh một câu hỏi từ AI
type GeneratedQuestion struct {
	Question      string          `json:"question"`
	Content       json.RawMessage `json:"content"`
	CorrectAnswer string          `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	Confidence    float64         `json:"confidence"`
}

// RetryGemini gọi Gemini tối đa retries lần, chờ tăng dần giữa các lần
func RetryGemini(prompt string, retries int) (string, error) {
	var resp string
	var err error
	for i := 0; i < retries; i++ {
		resp, err = GeminiGenerateText(prompt)
		if err == nil {
			return resp, nil
		}
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return "", err
}

// CleanJSONResponse loại bỏ markdown fence khỏi output của Gemini
func CleanJSONResponse(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// BuildObjectivesPrompt dựng prompt sinh mục tiêu học tập từ nội dung tài liệu
func BuildObjectivesPrompt(materialTexts []string, maxObjectives int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`
Bạn là AI hỗ trợ giảng viên soạn đề trắc nghiệm.
Từ nội dung tài liệu dưới đây, hãy rút ra tối đa %d mục tiêu học tập (learning objective) bằng tiếng Việt.

Yêu cầu:
- Mỗi mục tiêu là một câu hoàn chỉnh, bắt đầu bằng động từ (Trình bày, Giải thích, Phân biệt, Vận dụng,...)
- Mục tiêu phải đo lường được, bám sát nội dung tài liệu, không bịa thêm.
- Mỗi mục tiêu kèm "confidence" từ 0 đến 1 thể hiện độ chắc chắn.

Trả về JSON hợp lệ đúng cấu trúc:
[
  {"text": "Trình bày được khái niệm X", "confidence": 0.9},
  {"text": "Giải thích được cơ chế Y", "confidence": 0.8}
]

Chỉ trả về JSON hợp lệ, không thêm bất kỳ văn bản nào khác.
`, maxObjectives))

	for i, text := range materialTexts {
		sb.WriteString(fmt.Sprintf("\nTài liệu số %d:\n%s\n", i+1, text))
	}
	return sb.String()
}

// ParseObjectivesResponse parse JSON mục tiêu từ output Gemini, bỏ phần tử rỗng
func ParseObjectivesResponse(raw string) ([]GeneratedObjective, error) {
	clean := CleanJSONResponse(raw)

	var arr []GeneratedObjective
	if err := json.Unmarshal([]byte(clean), &arr); err != nil {
		return nil, fmt.Errorf("parse JSON mục tiêu thất bại: %w", err)
	}

	result := []GeneratedObjective{}
	for _, obj := range arr {
		if strings.TrimSpace(obj.Text) == "" {
			continue
		}
		result = append(result, obj)
	}
	if len(result) == 0 {
		return nil, errors.New("gemini không trả về mục tiêu nào hợp lệ")
	}
	return result, nil
}

// BuildQuestionPrompt dựng prompt sinh một câu hỏi theo loại và độ khó
func BuildQuestionPrompt(questionType, objectiveText, difficulty string) string {
	var shape string
	switch questionType {
	case "multiple-choice":
		shape = `"content": {"options": [{"text": "Phương án A", "is_correct": true}, {"text": "Phương án B", "is_correct": false}, {"text": "Phương án C", "is_correct": false}, {"text": "Phương án D", "is_correct": false}]} — đúng 4 lựa chọn, đúng 1 lựa chọn có is_correct true, vị trí đáp án đúng ngẫu nhiên`
	case "true-false":
		shape = `"content": {"statement": "Mệnh đề cần đánh giá", "answer": true}`
	case "short-answer":
		shape = `"content": {"expected_keywords": ["từ khóa 1", "từ khóa 2"]}`
	case "fill-in-blank":
		shape = `"content": {"text_with_blank": "Câu có chỗ trống ___", "blank_answer": "từ cần điền"}`
	case "essay":
		shape = `"content": {"rubric": ["ý chính 1", "ý chính 2", "ý chính 3"]}`
	default:
		shape = `"content": {}`
	}

	return fmt.Sprintf(`
Bạn là AI tạo câu hỏi kiểm tra giáo dục.
Hãy tạo đúng 1 câu hỏi loại "%s", độ khó "%s", bằng tiếng Việt, bám sát mục tiêu học tập sau:
"%s"

Yêu cầu cấu trúc content: %s

Trả về JSON hợp lệ đúng cấu trúc:
{
  "question": "Nội dung câu hỏi?",
  "content": { ... },
  "correct_answer": "Đáp án đúng, diễn đạt ngắn gọn",
  "explanation": "Giải thích vì sao đáp án đúng",
  "confidence": 0.9
}

Chỉ trả về JSON hợp lệ, không thêm bất kỳ văn bản nào khác.
`, questionType, difficulty, objectiveText, shape)
}

// ParseQuestionResponse parse JSON một câu hỏi từ output Gemini
func ParseQuestionResponse(raw string) (*GeneratedQuestion, error) {
	clean := CleanJSONResponse(raw)

	var q GeneratedQuestion
	if err := json.Unmarshal([]byte(clean), &q); err != nil {
		return nil, fmt.Errorf("parse JSON câu hỏi thất bại: %w", err)
	}
	if strings.TrimSpace(q.Question) == "" {
		return nil, errors.New("gemini trả về câu hỏi rỗng")
	}
	return &q, nil
}

// BuildClassifyPrompt dựng prompt gán đoạn văn bản vào các mục tiêu học tập
func BuildClassifyPrompt(text string) string {
	return fmt.Sprintf(`
Bạn là AI phân loại nội dung học tập.
Đọc đoạn văn bản sau và liệt kê các mục tiêu học tập (learning objective) mà nó phục vụ, bằng tiếng Việt.

Trả về JSON hợp lệ là một mảng chuỗi:
["Trình bày được khái niệm X", "Giải thích được cơ chế Y"]

Chỉ trả về JSON hợp lệ, không thêm bất kỳ văn bản nào khác.

Đoạn văn bản:
%s
`, text)
}

// ParseClassifyResponse parse mảng chuỗi mục tiêu từ output Gemini
func ParseClassifyResponse(raw string) ([]string, error) {
	clean := CleanJSONResponse(raw)

	var arr []string
	if err := json.Unmarshal([]byte(clean), &arr); err != nil {
		return nil, fmt.Errorf("parse JSON phân loại thất bại: %w", err)
	}

	result := []string{}
	for _, s := range arr {
		if strings.TrimSpace(s) == "" {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}
