package store

import (
	"context"

	"github.com/alextreichler/orderdesk/internal/models"
	"gorm.io/gorm/clause"
)

func (s *Store) GetAllItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := s.db(ctx).Order("item_id").Find(&items).Error
	return items, err
}

func (s *Store) GetItemByID(ctx context.Context, id int) (*models.Item, error) {
	var item models.Item
	if err := s.db(ctx).First(&item, "item_id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	return classify(s.db(ctx).Create(item).Error)
}

func (s *Store) UpdateItem(ctx context.Context, item *models.Item) error {
	res := s.db(ctx).Model(item).Omit(clause.Associations).Select("item_name", "unit_price").Updates(item)
	return s.checkUpdated(ctx, res, &models.Item{}, "item_id", item.ItemID)
}

func (s *Store) DeleteItem(ctx context.Context, id int) error {
	return classify(s.db(ctx).Delete(&models.Item{}, "item_id = ?", id).Error)
}
