package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/quizforge-backend/models"
)

// BuildQuizXLSX dựng file .xlsx cho một đề: sheet mục tiêu + sheet câu hỏi
// theo đúng thứ tự. Trả về nội dung file để upload lên storage.
func BuildQuizXLSX(quiz *models.Quiz, objectives []models.LearningObjective, questions []models.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet 1: Mục tiêu học tập
	sheetObjectives := "Mục tiêu"
	f.SetSheetName("Sheet1", sheetObjectives)
	f.SetSheetRow(sheetObjectives, "A1", &[]interface{}{"STT", "Mục tiêu học tập", "Nguồn gốc"})
	for i, obj := range objectives {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(sheetObjectives, cell, &[]interface{}{obj.Order + 1, obj.Text, obj.Source})
	}

	// Sheet 2: Câu hỏi (đã sắp theo thứ tự trong đề)
	sheetQuestions := "Câu hỏi"
	if _, err := f.NewSheet(sheetQuestions); err != nil {
		return nil, err
	}
	f.SetSheetRow(sheetQuestions, "A1", &[]interface{}{
		"STT", "Loại", "Độ khó", "Câu hỏi", "Các lựa chọn", "Đáp án", "Giải thích", "Trạng thái duyệt",
	})
	for i, q := range questions {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(sheetQuestions, cell, &[]interface{}{
			q.Order + 1, q.Type, q.Difficulty, q.Text,
			flattenQuestionContent(q.Type, q.Content),
			q.CorrectAnswer, q.Explanation, q.ReviewStatus,
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// flattenQuestionContent chuyển content JSON thành chuỗi dễ đọc trong Excel
func flattenQuestionContent(questionType, content string) string {
	if content == "" {
		return ""
	}

	switch questionType {
	case models.QuestionMultipleChoice:
		var parsed struct {
			Options []struct {
				Text      string `json:"text"`
				IsCorrect bool   `json:"is_correct"`
			} `json:"options"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil || len(parsed.Options) == 0 {
			return content
		}
		out := ""
		labels := []string{"A", "B", "C", "D", "E", "F"}
		for i, opt := range parsed.Options {
			label := fmt.Sprintf("%d", i+1)
			if i < len(labels) {
				label = labels[i]
			}
			if out != "" {
				out += "\n"
			}
			out += fmt.Sprintf("%s. %s", label, opt.Text)
		}
		return out

	case models.QuestionFillInBlank:
		var parsed struct {
			TextWithBlank string `json:"text_with_blank"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.TextWithBlank == "" {
			return content
		}
		return parsed.TextWithBlank

	default:
		return content
	}
}
