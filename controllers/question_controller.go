package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/services"
)

// POST /api/plans/:id/generate-questions
// Sinh toàn bộ câu hỏi theo breakdown của kế hoạch đang hiệu lực.
// Mọi lần gọi đều để lại một GenerationRecord, kể cả khi thất bại.
func GenerateQuestionsFromPlan(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	plan, quiz, err := services.FindOwnedPlan(db, planID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy kế hoạch"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	if quiz.ActivePlanID == nil || *quiz.ActivePlanID != planID {
		c.JSON(http.StatusConflict, gin.H{"error": "Kế hoạch chưa được duyệt làm kế hoạch hiệu lực"})
		return
	}

	var breakdown []models.PlanBreakdownItem
	db.Where("plan_id = ?", planID).Find(&breakdown)
	if len(breakdown) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kế hoạch không có breakdown nào"})
		return
	}

	objectiveText := map[uuid.UUID]string{}
	var objectives []models.LearningObjective
	db.Where("quiz_id = ?", quiz.ID).Find(&objectives)
	for _, obj := range objectives {
		objectiveText[obj.ID] = obj.Text
	}

	start := time.Now()

	// Sinh toàn bộ trong bộ nhớ trước; chỉ ghi DB khi tất cả thành công
	type pendingQuestion struct {
		objectiveID  uuid.UUID
		questionType string
		generated    *services.GeneratedQuestion
	}
	pending := []pendingQuestion{}

	for _, item := range breakdown {
		text, ok := objectiveText[item.ObjectiveID]
		if !ok {
			continue
		}
		for i := 0; i < item.Count; i++ {
			prompt := services.BuildQuestionPrompt(item.QuestionType, text, quiz.DefaultDifficulty)
			raw, err := services.RetryGemini(prompt, 3)
			if err == nil {
				var q *services.GeneratedQuestion
				q, err = services.ParseQuestionResponse(raw)
				if err == nil {
					pending = append(pending, pendingQuestion{
						objectiveID:  item.ObjectiveID,
						questionType: item.QuestionType,
						generated:    q,
					})
					continue
				}
			}

			// Thất bại: ghi nhật ký rồi trả 502, không động vào nội dung đề
			_ = services.AddGenerationRecord(db, &models.GenerationRecord{
				QuizID:        quiz.ID,
				PlanID:        &planID,
				Approach:      plan.Approach,
				QuestionCount: 0,
				ElapsedMs:     time.Since(start).Milliseconds(),
				ModelName:     services.GeminiModelName,
				Success:       false,
				ErrorMessage:  err.Error(),
			})
			c.JSON(http.StatusBadGateway, gin.H{"error": "Gemini không phản hồi", "details": err.Error()})
			return
		}
	}

	// Breakdown chỉ còn dòng trỏ tới mục tiêu đã mất thì không có gì để sinh
	if len(pending) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Breakdown không còn trỏ tới mục tiêu nào của đề"})
		return
	}

	var existing int64
	db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&existing)

	questions := make([]models.Question, 0, len(pending))
	for i, p := range pending {
		conf := p.generated.Confidence
		questions = append(questions, models.Question{
			ID:            uuid.New(),
			QuizID:        quiz.ID,
			ObjectiveID:   p.objectiveID,
			PlanID:        &planID,
			Type:          p.questionType,
			Difficulty:    quiz.DefaultDifficulty,
			Text:          p.generated.Question,
			Content:       string(p.generated.Content),
			CorrectAnswer: p.generated.CorrectAnswer,
			Explanation:   p.generated.Explanation,
			Order:         int(existing) + i,
			ReviewStatus:  models.ReviewPending,
			Source:        models.SourceGenerated,
			Confidence:    &conf,
			ModelName:     services.GeminiModelName,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		return tx.Model(plan).Update("status", models.PlanStatusUsed).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được câu hỏi", "details": err.Error()})
		return
	}

	_ = services.AddGenerationRecord(db, &models.GenerationRecord{
		QuizID:        quiz.ID,
		PlanID:        &planID,
		Approach:      plan.Approach,
		QuestionCount: len(questions),
		ElapsedMs:     time.Since(start).Milliseconds(),
		ModelName:     services.GeminiModelName,
		Success:       true,
	})

	updated, err := services.RecomputeQuizState(db, quiz.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Sinh câu hỏi thành công",
		"questions": questions,
		"quiz":      updated,
	})
}

type CreateQuestionInput struct {
	ObjectiveID   string `json:"objective_id" binding:"required"`
	Type          string `json:"type" binding:"required"`
	Difficulty    string `json:"difficulty"`
	Text          string `json:"text" binding:"required"`
	Content       string `json:"content"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// POST /api/quizzes/:id/questions
func CreateQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !services.ValidQuestionType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Loại câu hỏi không hợp lệ: " + input.Type})
		return
	}

	objectiveID, err := uuid.Parse(input.ObjectiveID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "objective_id không hợp lệ"})
		return
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	quiz, err := services.FindOwnedQuiz(db, quizID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	var objective models.LearningObjective
	if err := db.First(&objective, "id = ? AND quiz_id = ?", objectiveID, quizID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mục tiêu không thuộc đề này"})
		return
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = quiz.DefaultDifficulty
	}
	if !validDifficulty(difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Độ khó không hợp lệ (easy|medium|hard)"})
		return
	}

	var count int64
	db.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count)

	question := models.Question{
		ID:            uuid.New(),
		QuizID:        quizID,
		ObjectiveID:   objectiveID,
		Type:          input.Type,
		Difficulty:    difficulty,
		Text:          strings.TrimSpace(input.Text),
		Content:       input.Content,
		CorrectAnswer: input.CorrectAnswer,
		Explanation:   input.Explanation,
		Order:         int(count),
		ReviewStatus:  models.ReviewPending,
		Source:        models.SourceManual,
	}
	if err := db.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được câu hỏi"})
		return
	}

	updated, err := services.RecomputeQuizState(db, quizID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Thêm câu hỏi thành công",
		"question": question,
		"quiz":     updated,
	})
}

type EditQuestionInput struct {
	Text          *string `json:"text"`
	Content       *string `json:"content"`
	CorrectAnswer *string `json:"correct_answer"`
	Explanation   *string `json:"explanation"`
	Difficulty    *string `json:"difficulty"`
	Description   string  `json:"description"`
}

// PUT /api/questions/:id
// Ghi snapshot vào lịch sử chỉnh sửa trước khi thay nội dung.
func EditQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input EditQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Text == nil && input.Content == nil && input.CorrectAnswer == nil &&
		input.Explanation == nil && input.Difficulty == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có trường nào để cập nhật"})
		return
	}
	if input.Difficulty != nil && !validDifficulty(*input.Difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Độ khó không hợp lệ (easy|medium|hard)"})
		return
	}

	question, quiz, err := services.FindOwnedQuestion(db, questionID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy câu hỏi"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	err = db.Transaction(func(tx *gorm.DB) error {
		edit := models.QuestionEdit{
			ID:                    uuid.New(),
			QuestionID:            question.ID,
			EditedBy:              userID,
			Description:           input.Description,
			PreviousText:          question.Text,
			PreviousContent:       question.Content,
			PreviousCorrectAnswer: question.CorrectAnswer,
		}
		if err := tx.Create(&edit).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.Text != nil {
			updates["text"] = strings.TrimSpace(*input.Text)
		}
		if input.Content != nil {
			updates["content"] = *input.Content
		}
		if input.CorrectAnswer != nil {
			updates["correct_answer"] = *input.CorrectAnswer
		}
		if input.Explanation != nil {
			updates["explanation"] = *input.Explanation
		}
		if input.Difficulty != nil {
			updates["difficulty"] = *input.Difficulty
		}
		return tx.Model(question).Updates(updates).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật câu hỏi"})
		return
	}

	db.First(question, "id = ?", questionID)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Cập nhật câu hỏi thành công",
		"question": question,
	})
}

// PUT /api/quizzes/:id/questions/reorder
func ReorderQuestions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input ReorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requested := make([]uuid.UUID, 0, len(input.IDs))
	for _, idStr := range input.IDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id không hợp lệ: " + idStr})
			return
		}
		requested = append(requested, id)
	}

	services.LockQuiz(quizID)
	defer services.UnlockQuiz(quizID)

	if _, err := services.FindOwnedQuiz(db, quizID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề"})
		return
	}

	var current []uuid.UUID
	db.Model(&models.Question{}).Where("quiz_id = ?", quizID).Order("sort_order ASC").Pluck("id", &current)

	if err := services.ValidateReorder(current, requested); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i, id := range requested {
			if err := tx.Model(&models.Question{}).Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể sắp xếp lại câu hỏi"})
		return
	}

	var questions []models.Question
	db.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&questions)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Sắp xếp lại thành công",
		"questions": questions,
	})
}

type ReviewStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/questions/:id/review
// Chuyển tự do giữa các trạng thái duyệt.
func SetQuestionReviewStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var input ReviewStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch input.Status {
	case models.ReviewPending, models.ReviewApproved, models.ReviewNeedsReview, models.ReviewRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trạng thái duyệt không hợp lệ"})
		return
	}

	question, _, err := services.FindOwnedQuestion(db, questionID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy câu hỏi"})
		return
	}

	if err := db.Model(question).Update("review_status", input.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái duyệt"})
		return
	}

	question.ReviewStatus = input.Status
	c.JSON(http.StatusOK, gin.H{
		"message":  "Cập nhật trạng thái duyệt thành công",
		"question": question,
	})
}

// DELETE /api/questions/:id
func DeleteQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	question, quiz, err := services.FindOwnedQuestion(db, questionID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy câu hỏi"})
		return
	}

	services.LockQuiz(quiz.ID)
	defer services.UnlockQuiz(quiz.ID)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&models.QuestionEdit{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(question).Error; err != nil {
			return err
		}

		// Đánh lại thứ tự các câu còn lại
		var remaining []models.Question
		if err := tx.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&remaining).Error; err != nil {
			return err
		}
		for i := range remaining {
			if remaining[i].Order != i {
				if err := tx.Model(&remaining[i]).Update("sort_order", i).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa câu hỏi"})
		return
	}

	updated, err := services.RecomputeQuizState(db, quiz.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái đề"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Xóa câu hỏi thành công",
		"quiz":    updated,
	})
}
