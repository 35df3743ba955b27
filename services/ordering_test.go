package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateReorder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	current := []uuid.UUID{a, b, c}

	// Hoán vị hợp lệ
	assert.NoError(t, ValidateReorder(current, []uuid.UUID{c, a, b}))
	assert.NoError(t, ValidateReorder(current, []uuid.UUID{a, b, c}))

	// Thiếu phần tử
	assert.ErrorIs(t, ValidateReorder(current, []uuid.UUID{a, b}), ErrReorderMismatch)

	// Thừa phần tử
	assert.ErrorIs(t, ValidateReorder(current, []uuid.UUID{a, b, c, uuid.New()}), ErrReorderMismatch)

	// Chứa id lạ
	assert.ErrorIs(t, ValidateReorder(current, []uuid.UUID{a, b, uuid.New()}), ErrReorderMismatch)

	// Trùng lặp id
	assert.ErrorIs(t, ValidateReorder(current, []uuid.UUID{a, a, b}), ErrReorderMismatch)

	// Hai danh sách rỗng vẫn khớp
	assert.NoError(t, ValidateReorder(nil, nil))
}
