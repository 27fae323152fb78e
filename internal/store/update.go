package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// checkUpdated turns an update that matched no row into ErrNotFound when the
// row is gone, or ErrConflict when it still exists.
func (s *Store) checkUpdated(ctx context.Context, res *gorm.DB, model interface{}, pk string, id int) error {
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := s.db(ctx).Model(model).Where(pk+" = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return fmt.Errorf("%s %d: %w", pk, id, ErrConflict)
}
