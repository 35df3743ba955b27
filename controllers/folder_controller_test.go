package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolderDuplicateName(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/folders", gin.H{"name": "Giải tích 1"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Trùng tên trong cùng chủ sở hữu, kể cả khác hoa thường
	w = env.do(t, http.MethodPost, "/api/folders", gin.H{"name": "giải tích 1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Chữ cái đầu ngoài ASCII vẫn phải bắt được
	w = env.do(t, http.MethodPost, "/api/folders", gin.H{"name": "Đại số tuyến tính"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(t, http.MethodPost, "/api/folders", gin.H{"name": "đại số tuyến tính"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateFolderRequiresName(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/folders", gin.H{"description": "thiếu tên"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteFolderConflictWhenNotEmpty(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Vật lý đại cương")
	env.seedCompletedMaterial(t, folder.ID, "Chương 1.txt")

	w := env.do(t, http.MethodDelete, "/api/folders/"+folder.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Xóa tài liệu xong thì thư mục xóa được
	require.NoError(t, env.db.Exec("DELETE FROM materials WHERE folder_id = ?", folder.ID).Error)
	w = env.do(t, http.MethodDelete, "/api/folders/"+folder.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFolderOwnershipHiddenAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Thư mục riêng")

	// Người khác truy cập thì không phân biệt được là tồn tại hay không
	otherToken := env.newLecturerToken(t)
	saved := env.token
	env.token = otherToken
	w := env.do(t, http.MethodGet, "/api/folders/"+folder.ID.String(), nil)
	env.token = saved
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFolderStats(t *testing.T) {
	env := newTestEnv(t)
	folder := env.createFolder(t, "Hóa hữu cơ")
	env.seedCompletedMaterial(t, folder.ID, "Slide.txt")
	env.seedCompletedMaterial(t, folder.ID, "Giáo trình.txt")
	env.createQuiz(t, folder.ID, "Đề giữa kỳ")

	w := env.do(t, http.MethodGet, "/api/folders/"+folder.ID.String()+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["material_count"])
	assert.EqualValues(t, 1, body["quiz_count"])
	assert.EqualValues(t, 0, body["total_questions"])
}
