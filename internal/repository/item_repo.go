package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/stockroom-api/internal/models"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// sortColumns whitelists the columns List may order by. Anything else falls
// back to created_at.
var sortColumns = map[string]bool{
	"id":          true,
	"name":        true,
	"description": true,
	"category":    true,
	"price":       true,
	"quantity":    true,
	"is_active":   true,
	"created_at":  true,
	"updated_at":  true,
}

// ListOptions captures the filter, sort and pagination knobs of an item listing
type ListOptions struct {
	Search   string
	Category string
	IsActive *bool
	SortBy   string
	Order    string
	Skip     int
	Limit    int
}

// Normalize clamps pagination into range and resolves the sort column and
// direction to safe values
func (o *ListOptions) Normalize() {
	if o.Skip < 0 {
		o.Skip = 0
	}
	if o.Limit == 0 {
		o.Limit = defaultListLimit
	}
	if o.Limit < 1 {
		o.Limit = 1
	}
	if o.Limit > maxListLimit {
		o.Limit = maxListLimit
	}
	if !sortColumns[o.SortBy] {
		o.SortBy = "created_at"
	}
	if o.Order != "asc" {
		o.Order = "desc"
	}
}

// ItemRepository handles item data access
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create creates a new item
func (r *ItemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

// GetByIDAndOwnerID retrieves an item by ID scoped to its owner. Items of
// other owners are indistinguishable from missing ones.
func (r *ItemRepository) GetByIDAndOwnerID(id, ownerID uint) (*models.Item, error) {
	var item models.Item
	result := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, result.Error
	}
	return &item, nil
}

// List retrieves a page of the owner's items plus the total count before
// pagination
func (r *ItemRepository) List(ownerID uint, opts ListOptions) ([]models.Item, int64, error) {
	opts.Normalize()

	var total int64
	if err := r.filtered(ownerID, opts).Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	result := r.filtered(ownerID, opts).
		Order(fmt.Sprintf("%s %s", opts.SortBy, strings.ToUpper(opts.Order))).
		Offset(opts.Skip).
		Limit(opts.Limit).
		Find(&items)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return items, total, nil
}

// filtered builds the WHERE chain shared by Count and Find
func (r *ItemRepository) filtered(ownerID uint, opts ListOptions) *gorm.DB {
	query := r.db.Where("owner_id = ?", ownerID)
	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.IsActive != nil {
		query = query.Where("is_active = ?", *opts.IsActive)
	}
	return query
}

// Update saves all fields of an item
func (r *ItemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// Delete removes an item scoped to its owner
func (r *ItemRepository) Delete(id, ownerID uint) error {
	result := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// CountByOwnerID counts all items of an owner
func (r *ItemRepository) CountByOwnerID(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Item{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// TotalValue sums price*quantity over all items of an owner
func (r *ItemRepository) TotalValue(ownerID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.Item{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&total).Error
	return total, err
}

// CategoryCounts groups the owner's items by category, folding empty
// categories into "Uncategorized", largest group first
func (r *ItemRepository) CategoryCounts(ownerID uint) ([]models.CategoryStat, error) {
	stats := make([]models.CategoryStat, 0)
	err := r.db.Model(&models.Item{}).
		Select("COALESCE(NULLIF(category, ''), 'Uncategorized') AS name, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("COALESCE(NULLIF(category, ''), 'Uncategorized')").
		Order("count DESC, name ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CountCreatedSince counts the owner's items created at or after the cutoff
func (r *ItemRepository) CountCreatedSince(ownerID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Item{}).
		Where("owner_id = ? AND created_at >= ?", ownerID, since).
		Count(&count).Error
	return count, err
}
