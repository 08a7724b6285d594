package academic

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores the outcome of a processed enroll request so a
// caller retrying after a ContentionTimeout cannot double-enroll.
type IdempotencyKey struct {
	Key          string    `json:"key" gorm:"primary_key"`
	StudentID    uuid.UUID `json:"student_id" gorm:"type:uuid;not null"`
	RequestHash  string    `json:"request_hash" gorm:"not null"`
	ResponseData string    `json:"response_data"`
	StatusCode   int       `json:"status_code"`
	ProcessedAt  time.Time `json:"processed_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// IsExpired reports whether the key has passed its retention window.
func (k *IdempotencyKey) IsExpired() bool {
	return time.Now().After(k.ExpiresAt)
}
