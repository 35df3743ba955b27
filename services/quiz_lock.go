package services

import (
	"sync"

	"github.com/google/uuid"
)

// Khóa theo từng đề: mọi thao tác ghi lên cùng một aggregate (đề + các
// collection con) phải tuần tự để progress/status không bị tính sai khi có
// hai request ghi đồng thời. Các đề khác nhau không chặn nhau.
var quizLocks sync.Map // map[uuid.UUID]*sync.Mutex

func LockQuiz(quizID uuid.UUID) {
	mu, _ := quizLocks.LoadOrStore(quizID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

func UnlockQuiz(quizID uuid.UUID) {
	if mu, ok := quizLocks.Load(quizID); ok {
		mu.(*sync.Mutex).Unlock()
	}
}
