package service

import (
	"time"

	"github.com/stockroom-api/internal/models"
	"github.com/stockroom-api/internal/repository"
	"github.com/stockroom-api/pkg/optional"
	"github.com/stockroom-api/pkg/sanitize"
)

const (
	maxNameRunes        = 200
	maxDescriptionRunes = 1000
	maxCategoryRunes    = 100
	recentItemsWindow   = 7 * 24 * time.Hour
)

// ItemStore is the persistence surface the item service depends on
type ItemStore interface {
	Create(item *models.Item) error
	GetByIDAndOwnerID(id, ownerID uint) (*models.Item, error)
	List(ownerID uint, opts repository.ListOptions) ([]models.Item, int64, error)
	Update(item *models.Item) error
	Delete(id, ownerID uint) error
	CountByOwnerID(ownerID uint) (int64, error)
	TotalValue(ownerID uint) (float64, error)
	CategoryCounts(ownerID uint) ([]models.CategoryStat, error)
	CountCreatedSince(ownerID uint, since time.Time) (int64, error)
}

// ItemService handles item management scoped to the authenticated owner
type ItemService struct {
	itemStore ItemStore
}

// NewItemService creates a new ItemService
func NewItemService(itemStore ItemStore) *ItemService {
	return &ItemService{itemStore: itemStore}
}

// ItemCreateRequest is the full item payload used by create and replace.
// Omitted numeric fields default to zero and is_active defaults to true.
type ItemCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" binding:"omitempty,gte=0"`
	Quantity    int     `json:"quantity" binding:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// ItemPatchRequest is the partial item payload. Each field tracks whether it
// was present, so an omitted field and an explicit null are distinct.
type ItemPatchRequest struct {
	Name        optional.Field[string]  `json:"name"`
	Description optional.Field[string]  `json:"description"`
	Category    optional.Field[string]  `json:"category"`
	Price       optional.Field[float64] `json:"price"`
	Quantity    optional.Field[int]     `json:"quantity"`
	IsActive    optional.Field[bool]    `json:"is_active"`
}

// List returns a filtered, sorted page of the owner's items
func (s *ItemService) List(owner *models.User, opts repository.ListOptions) (*models.ItemListResponse, error) {
	opts.Search = sanitize.SearchQuery(opts.Search)
	opts.Normalize()

	items, total, err := s.itemStore.List(owner.ID, opts)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, buildItemResponse(&items[i], owner))
	}

	return &models.ItemListResponse{
		Items: responses,
		Total: total,
		Skip:  opts.Skip,
		Limit: opts.Limit,
	}, nil
}

// Get returns a single item owned by the user
func (s *ItemService) Get(owner *models.User, itemID uint) (*models.ItemResponse, error) {
	item, err := s.itemStore.GetByIDAndOwnerID(itemID, owner.ID)
	if err != nil {
		return nil, err
	}
	resp := buildItemResponse(item, owner)
	return &resp, nil
}

// Create stores a new item for the owner
func (s *ItemService) Create(owner *models.User, req *ItemCreateRequest) (*models.ItemResponse, error) {
	fields, err := normalizeItemFields(req)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:        fields.name,
		Description: fields.description,
		Category:    fields.category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		IsActive:    fields.isActive,
		OwnerID:     owner.ID,
	}

	if err := s.itemStore.Create(item); err != nil {
		return nil, err
	}

	resp := buildItemResponse(item, owner)
	return &resp, nil
}

// Replace overwrites every mutable field of an existing item. Fields absent
// from the payload fall back to their defaults.
func (s *ItemService) Replace(owner *models.User, itemID uint, req *ItemCreateRequest) (*models.ItemResponse, error) {
	item, err := s.itemStore.GetByIDAndOwnerID(itemID, owner.ID)
	if err != nil {
		return nil, err
	}

	fields, err := normalizeItemFields(req)
	if err != nil {
		return nil, err
	}

	item.Name = fields.name
	item.Description = fields.description
	item.Category = fields.category
	item.Price = req.Price
	item.Quantity = req.Quantity
	item.IsActive = fields.isActive

	if err := s.itemStore.Update(item); err != nil {
		return nil, err
	}

	resp := buildItemResponse(item, owner)
	return &resp, nil
}

// Patch updates only the fields present in the payload. Explicit nulls clear
// the nullable text fields and are rejected elsewhere.
func (s *ItemService) Patch(owner *models.User, itemID uint, req *ItemPatchRequest) (*models.ItemResponse, error) {
	item, err := s.itemStore.GetByIDAndOwnerID(itemID, owner.ID)
	if err != nil {
		return nil, err
	}

	if req.Name.Set {
		name, ok := req.Name.Get()
		if !ok {
			return nil, newValidationError("Name cannot be null")
		}
		name = sanitize.Input(name)
		if name == "" {
			return nil, newValidationError("Name cannot be empty")
		}
		if len([]rune(name)) > maxNameRunes {
			return nil, newValidationError("Name must be at most 200 characters")
		}
		item.Name = name
	}

	if req.Description.Set {
		description := ""
		if value, ok := req.Description.Get(); ok {
			description = sanitize.Input(value)
			if len([]rune(description)) > maxDescriptionRunes {
				return nil, newValidationError("Description must be at most 1000 characters")
			}
		}
		item.Description = description
	}

	if req.Category.Set {
		category := ""
		if value, ok := req.Category.Get(); ok {
			category = sanitize.Input(value)
			if len([]rune(category)) > maxCategoryRunes {
				return nil, newValidationError("Category must be at most 100 characters")
			}
		}
		item.Category = category
	}

	if req.Price.Set {
		price, ok := req.Price.Get()
		if !ok {
			return nil, newValidationError("Price cannot be null")
		}
		if price < 0 {
			return nil, newValidationError("Price cannot be negative")
		}
		item.Price = price
	}

	if req.Quantity.Set {
		quantity, ok := req.Quantity.Get()
		if !ok {
			return nil, newValidationError("Quantity cannot be null")
		}
		if quantity < 0 {
			return nil, newValidationError("Quantity cannot be negative")
		}
		item.Quantity = quantity
	}

	if req.IsActive.Set {
		isActive, ok := req.IsActive.Get()
		if !ok {
			return nil, newValidationError("is_active cannot be null")
		}
		item.IsActive = isActive
	}

	if err := s.itemStore.Update(item); err != nil {
		return nil, err
	}

	resp := buildItemResponse(item, owner)
	return &resp, nil
}

// Delete removes an item owned by the user
func (s *ItemService) Delete(owner *models.User, itemID uint) error {
	return s.itemStore.Delete(itemID, owner.ID)
}

// Stats summarizes the owner's inventory
func (s *ItemService) Stats(owner *models.User) (*models.ItemStatsResponse, error) {
	totalItems, err := s.itemStore.CountByOwnerID(owner.ID)
	if err != nil {
		return nil, err
	}

	totalValue, err := s.itemStore.TotalValue(owner.ID)
	if err != nil {
		return nil, err
	}

	categories, err := s.itemStore.CategoryCounts(owner.ID)
	if err != nil {
		return nil, err
	}

	recentItems, err := s.itemStore.CountCreatedSince(owner.ID, time.Now().Add(-recentItemsWindow))
	if err != nil {
		return nil, err
	}

	return &models.ItemStatsResponse{
		TotalItems:  totalItems,
		TotalValue:  totalValue,
		Categories:  categories,
		RecentItems: recentItems,
	}, nil
}

type itemFields struct {
	name        string
	description string
	category    string
	isActive    bool
}

// normalizeItemFields sanitizes the text fields of a full item payload and
// enforces the post-sanitization length caps
func normalizeItemFields(req *ItemCreateRequest) (*itemFields, error) {
	name := sanitize.Input(req.Name)
	if name == "" {
		return nil, newValidationError("Name cannot be empty")
	}
	if len([]rune(name)) > maxNameRunes {
		return nil, newValidationError("Name must be at most 200 characters")
	}

	description := sanitize.Input(req.Description)
	if len([]rune(description)) > maxDescriptionRunes {
		return nil, newValidationError("Description must be at most 1000 characters")
	}

	category := sanitize.Input(req.Category)
	if len([]rune(category)) > maxCategoryRunes {
		return nil, newValidationError("Category must be at most 100 characters")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return &itemFields{
		name:        name,
		description: description,
		category:    category,
		isActive:    isActive,
	}, nil
}

// buildItemResponse converts an item to its public view, embedding the owner
// summary when available
func buildItemResponse(item *models.Item, owner *models.User) models.ItemResponse {
	resp := models.ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		Price:       item.Price,
		Quantity:    item.Quantity,
		IsActive:    item.IsActive,
		OwnerID:     item.OwnerID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if owner != nil && owner.ID == item.OwnerID {
		resp.Owner = &models.ItemOwner{
			ID:       owner.ID,
			Username: owner.Username,
			FullName: owner.FullName,
		}
	}
	return resp
}
