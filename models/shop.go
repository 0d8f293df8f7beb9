// models/shop.go
package models

import "time"

// ShopItem is a point-redeemable catalog entry. Stock of -1 means unlimited.
type ShopItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Icon        string    `gorm:"size:100" json:"icon"`
	Cost        int       `gorm:"not null" json:"cost"`
	Stock       int       `json:"stock"`
	IsActive    bool      `gorm:"index" json:"is_active"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ShopItem) TableName() string {
	return "shop_items"
}

// Redemption statuses.
const (
	RedemptionPending   = "pending"
	RedemptionFulfilled = "fulfilled"
	RedemptionCancelled = "cancelled"
)

// RewardRedemption records a shop purchase. PointsSpent is kept on the row
// so the history survives later price changes.
type RewardRedemption struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	ShopItemID     uint      `gorm:"not null;index" json:"shop_item_id"`
	PointsSpent    int       `gorm:"not null" json:"points_spent"`
	RedemptionCode string    `gorm:"uniqueIndex;size:40" json:"redemption_code"`
	Status         string    `gorm:"not null;default:'pending';size:20" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User *UserProfile `gorm:"foreignKey:UserID" json:"-"`
	Item *ShopItem    `gorm:"foreignKey:ShopItemID" json:"item,omitempty"`
}

func (RewardRedemption) TableName() string {
	return "reward_redemptions"
}
