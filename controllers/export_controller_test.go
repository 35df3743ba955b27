package controllers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/quizforge-backend/models"
)

func TestRecordExportRequiresQuestions(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Xuất đề")
	quiz := env.createQuiz(t, folder.ID, "Đề trống")

	w := env.do(t, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/exports", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadExportCountsAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Tải bản xuất")
	quiz := env.createQuiz(t, folder.ID, "Đề")

	export := models.QuizExport{
		ID:        uuid.New(),
		QuizID:    quiz.ID,
		Format:    "xlsx",
		FilePath:  "https://storage.example.com/exports/de.xlsx",
		FileSize:  2048,
		CreatedBy: env.user.ID,
	}
	require.NoError(t, env.db.Create(&export).Error)

	for i := 1; i <= 2; i++ {
		w := env.do(t, http.MethodGet, "/api/exports/"+export.ID.String()+"/download", nil)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, export.FilePath, w.Header().Get("Location"))

		var reloaded models.QuizExport
		require.NoError(t, env.db.First(&reloaded, "id = ?", export.ID).Error)
		assert.Equal(t, i, reloaded.DownloadCount)
	}

	// Người khác không thấy bản xuất của mình
	ownerToken := env.token
	env.token = env.newLecturerToken(t)
	w := env.do(t, http.MethodGet, "/api/exports/"+export.ID.String()+"/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env.token = ownerToken
}

func TestGetQuizExportsListsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Sổ xuất")
	quiz := env.createQuiz(t, folder.ID, "Đề")

	for _, name := range []string{"a.xlsx", "b.xlsx"} {
		require.NoError(t, env.db.Create(&models.QuizExport{
			ID:        uuid.New(),
			QuizID:    quiz.ID,
			Format:    "xlsx",
			FilePath:  "https://storage.example.com/exports/" + name,
			CreatedBy: env.user.ID,
		}).Error)
	}

	w := env.do(t, http.MethodGet, "/api/quizzes/"+quiz.ID.String()+"/exports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	exports, ok := body["exports"].([]interface{})
	require.True(t, ok)
	assert.Len(t, exports, 2)
}
