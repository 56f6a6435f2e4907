package utils

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// CreatePair inserts a unique-pair row (favorite, shopping cart entry,
// subscription). The store's unique constraint is the source of truth: a
// duplicate-key violation is translated to the caller's conflict error, so a
// race between two concurrent adds still surfaces as a domain conflict.
func CreatePair[T any](ctx context.Context, db *gorm.DB, row *T, onConflict error) error {
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return onConflict
		}
		return err
	}
	return nil
}

// DeletePair removes a unique-pair row matching conds. Removing a pair that
// does not exist returns the caller's not-found error and changes nothing.
func DeletePair[T any](ctx context.Context, db *gorm.DB, conds map[string]any, onMissing error) error {
	var row T
	result := db.WithContext(ctx).Where(conds).Delete(&row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return onMissing
	}
	return nil
}
