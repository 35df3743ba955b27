package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/quizforge-backend/config"
	"github.com/vnkhanh/quizforge-backend/models"
	"github.com/vnkhanh/quizforge-backend/routes"
	"github.com/vnkhanh/quizforge-backend/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	user   models.User
	token  string
}

// newTestEnv dựng DB sqlite in-memory, router thật và một giảng viên đã đăng nhập
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// DSN đặt tên riêng cho từng test để các env không chia sẻ dữ liệu
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateModels(db))

	// AuthMiddleware đọc config.DB để kiểm tra trạng thái tài khoản
	config.DB = db

	user := models.User{
		ID:       uuid.New(),
		FullName: "Giảng viên Test",
		Email:    uuid.NewString() + "@test.local",
		Password: "hashed",
		Role:     models.RoleLecturer,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	require.NoError(t, err)

	router := routes.SetupRouter(gin.New(), db)

	return &testEnv{router: router, db: db, user: user, token: token}
}

// newLecturerToken tạo thêm một giảng viên khác trong cùng DB và trả về token
func (e *testEnv) newLecturerToken(t *testing.T) string {
	t.Helper()

	other := models.User{
		ID:       uuid.New(),
		FullName: "Giảng viên Khác",
		Email:    uuid.NewString() + "@test.local",
		Password: "hashed",
		Role:     models.RoleLecturer,
	}
	require.NoError(t, e.db.Create(&other).Error)

	token, err := utils.GenerateToken(other.ID.String(), string(other.Role))
	require.NoError(t, err)
	return token
}

// do gửi một request JSON kèm token và trả về recorder
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// ==== fixture helpers — ghi thẳng DB, bỏ qua pipeline AI/storage ====

func (e *testEnv) createFolder(t *testing.T, name string) models.Folder {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/folders", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code)

	var folder models.Folder
	require.NoError(t, e.db.First(&folder, "name = ? AND created_by = ?", name, e.user.ID).Error)
	return folder
}

func (e *testEnv) seedCompletedMaterial(t *testing.T, folderID uuid.UUID, name string) models.Material {
	t.Helper()
	material := models.Material{
		ID:               uuid.New(),
		FolderID:         folderID,
		CreatedBy:        e.user.ID,
		Name:             name,
		Type:             models.MaterialText,
		Content:          "Nội dung " + name,
		Checksum:         utils.ChecksumText("Nội dung " + name),
		ProcessingStatus: models.ProcessingCompleted,
		ExtractedText:    "Nội dung đã làm sạch của " + name,
	}
	require.NoError(t, e.db.Create(&material).Error)
	return material
}

func (e *testEnv) createQuiz(t *testing.T, folderID uuid.UUID, name string) models.Quiz {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/quizzes", gin.H{
		"folder_id": folderID.String(),
		"name":      name,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var quiz models.Quiz
	require.NoError(t, e.db.First(&quiz, "name = ? AND folder_id = ?", name, folderID).Error)
	return quiz
}

func (e *testEnv) reloadQuiz(t *testing.T, quizID uuid.UUID) models.Quiz {
	t.Helper()
	var quiz models.Quiz
	require.NoError(t, e.db.First(&quiz, "id = ?", quizID).Error)
	return quiz
}
