// models/user.go
package models

import (
	"time"
)

// UserProfile is the per-wallet account record. Wallet addresses are stored
// lowercase; callers must normalize before querying.
type UserProfile struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	WalletAddress string `gorm:"uniqueIndex;not null;size:64" json:"wallet_address"`
	DisplayName   string `gorm:"size:100" json:"display_name"`
	AvatarURL     string `gorm:"size:500" json:"avatar_url"`

	// Points & streaks
	TotalPoints      int    `gorm:"default:0" json:"total_points"`
	CurrentStreak    int    `gorm:"default:0" json:"current_streak"`
	LongestStreak    int    `gorm:"default:0" json:"longest_streak"`
	LastActivityDate string `gorm:"size:10" json:"last_activity_date"` // UTC date, YYYY-MM-DD

	// Referrals
	ReferralCode string `gorm:"uniqueIndex;size:16" json:"referral_code"`
	ReferredBy   string `gorm:"size:64" json:"referred_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	QuestProgress []UserQuestProgress `gorm:"foreignKey:UserID" json:"quest_progress,omitempty"`
	Badges        []UserBadge         `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
