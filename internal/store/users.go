package store

import (
	"context"
	"errors"

	"github.com/alextreichler/orderdesk/internal/models"
	"gorm.io/gorm"
)

// GetUserByEmail returns nil, nil when no user has that exact email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser is for the operator CLI and tests; the password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return classify(s.db(ctx).Create(user).Error)
}

func (s *Store) SetUserLock(ctx context.Context, email string, locked bool) error {
	res := s.db(ctx).Model(&models.User{}).Where("email = ?", email).Update("lock", locked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
