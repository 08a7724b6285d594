package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "academic-registrar/internal/domain/academic"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultLockTimeout bounds how long a mutating transaction may wait on row
// locks before it aborts with a ContentionError.
const DefaultLockTimeout = 3 * time.Second

// serializable runs fn inside a serializable transaction with a local lock
// timeout. Lock waits and serialization failures surface as a retryable
// ContentionError; everything else passes through unchanged.
func serializable(ctx context.Context, db *gorm.DB, lockTimeout time.Duration, op string, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout+time.Second)
	defer cancel()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())).Error; err != nil {
			return err
		}
		return fn(tx)
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err == nil {
		return nil
	}
	if isContention(err) {
		return &domain.ContentionError{Op: op, Timeout: lockTimeout}
	}
	return err
}

// isContention matches lock timeouts (SQLSTATE 55P03), serialization
// failures (40001), deadlocks (40P01) and context expiry.
func isContention(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "55P03") ||
		strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "lock timeout")
}

// isFKViolation matches foreign key violations (SQLSTATE 23503), the
// store-level backstop for restrict deletes.
func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}

// adjustSeats applies a seat-counter delta to an offering with a guard that
// refuses to drive the counter negative or past max_students. Must run
// inside the same transaction as the enrollment row mutation it accounts
// for.
func adjustSeats(tx *gorm.DB, offeringID uuid.UUID, delta int) error {
	res := tx.Model(&domain.CourseOffering{}).
		Where("offering_id = ? AND current_enrollment + ? BETWEEN 0 AND max_students", offeringID, delta).
		Updates(map[string]interface{}{
			"current_enrollment": gorm.Expr("current_enrollment + ?", delta),
			"version":            gorm.Expr("version + 1"),
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seat counter adjustment of %+d rejected for offering %s", delta, offeringID)
	}
	return nil
}
