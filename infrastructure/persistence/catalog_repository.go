package persistence

import (
	"context"
	"errors"
	"fmt"

	"clipcast/domain/model"
	"clipcast/domain/repository"

	"gorm.io/gorm"
)

// CatalogRepository keeps content items and connected accounts in MySQL via gorm
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository { return &CatalogRepository{db: db} }

var _ repository.ICatalog = (*CatalogRepository)(nil)

// Migrate creates or updates the catalog tables
func (r *CatalogRepository) Migrate() error {
	return r.db.AutoMigrate(&model.ContentItem{}, &model.Destination{})
}

func (r *CatalogRepository) CreateContent(ctx context.Context, items []model.ContentItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *CatalogRepository) GetContent(ctx context.Context, userID, contentID string) (*model.ContentItem, error) {
	var item model.ContentItem
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, contentID).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("content %s: %w", contentID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) ListContent(ctx context.Context, userID string) ([]model.ContentItem, error) {
	var items []model.ContentItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) FindContentByIDs(ctx context.Context, userID string, ids []string) ([]model.ContentItem, error) {
	var items []model.ContentItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&items).Error
	return items, err
}

func (r *CatalogRepository) CreateDestination(ctx context.Context, dest *model.Destination) error {
	return r.db.WithContext(ctx).Create(dest).Error
}

func (r *CatalogRepository) ListDestinations(ctx context.Context, userID string) ([]model.Destination, error) {
	var dests []model.Destination
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&dests).Error
	return dests, err
}

func (r *CatalogRepository) FindDestinationsByIDs(ctx context.Context, userID string, ids []string) ([]model.Destination, error) {
	var dests []model.Destination
	if len(ids) == 0 {
		return dests, nil
	}
	err := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&dests).Error
	return dests, err
}

func (r *CatalogRepository) SetDestinationActive(ctx context.Context, userID, destinationID string, active bool) (*model.Destination, error) {
	res := r.db.WithContext(ctx).Model(&model.Destination{}).
		Where("id = ? AND user_id = ?", destinationID, userID).
		Update("is_active", active)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("destination %s: %w", destinationID, repository.ErrNotFound)
	}
	var dest model.Destination
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", destinationID, userID).Take(&dest).Error; err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *CatalogRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
