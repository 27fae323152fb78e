package store

import (
	"context"
	"errors"

	"github.com/alextreichler/orderdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetAllOrderDetails(ctx context.Context) ([]models.OrderDetail, error) {
	var details []models.OrderDetail
	err := s.db(ctx).Preload("Item").Order("id").Find(&details).Error
	return details, err
}

func (s *Store) GetOrderDetailsByOrder(ctx context.Context, orderID int) ([]models.OrderDetail, error) {
	var details []models.OrderDetail
	err := s.db(ctx).Preload("Item").Where("order_id = ?", orderID).Order("id").Find(&details).Error
	return details, err
}

func (s *Store) GetOrderDetailByID(ctx context.Context, id int) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	if err := s.db(ctx).Preload("Item").First(&detail, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &detail, nil
}

func (s *Store) CreateOrderDetail(ctx context.Context, detail *models.OrderDetail) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Order{}, "order_id", detail.OrderID); err != nil {
			return err
		}
		if err := requireItem(tx, detail.ItemID); err != nil {
			return err
		}
		return classify(tx.Omit(clause.Associations).Create(detail).Error)
	})
}

func (s *Store) UpdateOrderDetail(ctx context.Context, detail *models.OrderDetail) error {
	if err := requireRow(s.db(ctx), &models.Order{}, "order_id", detail.OrderID); err != nil {
		return err
	}
	if err := requireItem(s.db(ctx), detail.ItemID); err != nil {
		return err
	}
	res := s.db(ctx).Model(detail).Omit(clause.Associations).Select("order_id", "item_id", "quantity").Updates(detail)
	return s.checkUpdated(ctx, res, &models.OrderDetail{}, "id", detail.ID)
}

// DeleteOrderDetail removes one line and reports which order it belonged to.
// found is false when no such line exists.
func (s *Store) DeleteOrderDetail(ctx context.Context, id int) (orderID int, found bool, err error) {
	var detail models.OrderDetail
	err = s.db(ctx).First(&detail, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if err := s.db(ctx).Delete(&detail).Error; err != nil {
		return 0, false, err
	}
	return detail.OrderID, true, nil
}
