package services

import (
	"errors"

	"github.com/google/uuid"
)

var ErrReorderMismatch = errors.New("danh sách id không khớp chính xác với các phần tử hiện có")

// ValidateReorder kiểm tra requested có đúng bằng tập current không
// (không thiếu, không thừa, không id lạ, không trùng). Thứ tự mới của mỗi
// phần tử là chỉ số của nó trong requested.
func ValidateReorder(current []uuid.UUID, requested []uuid.UUID) error {
	if len(current) != len(requested) {
		return ErrReorderMismatch
	}

	seen := map[uuid.UUID]bool{}
	for _, id := range current {
		seen[id] = false
	}
	for _, id := range requested {
		used, ok := seen[id]
		if !ok || used {
			return ErrReorderMismatch
		}
		seen[id] = true
	}
	return nil
}
