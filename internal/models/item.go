package models

import (
	"time"
)

// Item represents an inventory item owned by a single user
type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Category    string    `gorm:"size:100;index" json:"category,omitempty"`
	Price       float64   `gorm:"type:decimal(10,2);default:0" json:"price"`
	Quantity    int       `gorm:"default:0" json:"quantity"`
	IsActive    bool      `json:"is_active"`
	OwnerID     uint      `gorm:"index;not null" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// TableName specifies the table name for Item model
func (Item) TableName() string {
	return "items"
}

// ItemOwner is the owner summary embedded in item responses
type ItemOwner struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

// ItemResponse is the public view of an item
type ItemResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Price       float64    `json:"price"`
	Quantity    int        `json:"quantity"`
	IsActive    bool       `json:"is_active"`
	OwnerID     uint       `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Owner       *ItemOwner `json:"owner,omitempty"`
}

// ItemListResponse is a page of items together with the unpaginated total
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int64          `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

// CategoryStat is the per-category item count in the stats response
type CategoryStat struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ItemStatsResponse summarizes a user's inventory
type ItemStatsResponse struct {
	TotalItems  int64          `json:"total_items"`
	TotalValue  float64        `json:"total_value"`
	Categories  []CategoryStat `json:"categories"`
	RecentItems int64          `json:"recent_items"`
}
