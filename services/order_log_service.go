package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/kafe-cerita-bot/models"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderLogService menyimpan pesanan bot yang sudah selesai
type OrderLogService struct {
	db *gorm.DB
}

// NewOrderLogService membuat instance baru OrderLogService
func NewOrderLogService(db *gorm.DB) *OrderLogService {
	return &OrderLogService{db: db}
}

// RecordOrder menyimpan pesanan beserta itemnya
func (s *OrderLogService) RecordOrder(ctx context.Context, order *models.BotOrder) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to record order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// ListOrders mendapatkan pesanan terbaru, maksimal limit baris
func (s *OrderLogService) ListOrders(limit int) ([]models.BotOrder, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var orders []models.BotOrder
	err := s.db.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderByNumber mendapatkan pesanan berdasarkan nomor pesanan
func (s *OrderLogService) GetOrderByNumber(orderNumber string) (*models.BotOrder, error) {
	var order models.BotOrder
	err := s.db.Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
