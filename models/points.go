// models/points.go
package models

import "time"

// Point transaction types.
const (
	TxQuestCompletion = "quest_completion"
	TxStreakBonus     = "streak_bonus"
	TxShopPurchase    = "shop_purchase"
	TxReferralBonus   = "referral_bonus"
	TxAdminAdjustment = "admin_adjustment"
)

// PointTransaction is an append-only ledger entry. The sum of a user's
// entries must equal UserProfile.TotalPoints; every balance change is written
// together with its ledger row in one transaction.
type PointTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Amount      int       `gorm:"not null" json:"amount"` // signed
	Type        string    `gorm:"not null;index;size:30" json:"type"`
	ReferenceID *uint     `json:"reference_id,omitempty"` // quest or shop item
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	User *UserProfile `gorm:"foreignKey:UserID" json:"-"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}

// Badge rarities.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex;size:100" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Icon        string    `gorm:"size:100" json:"icon"`
	Rarity      string    `gorm:"not null;default:'common';size:20" json:"rarity"`
	Category    string    `gorm:"size:50" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge records a badge earned by a user. Awarded at most once per
// (user, badge) pair.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`

	User  *UserProfile `gorm:"foreignKey:UserID" json:"-"`
	Badge *Badge       `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

// Milestone is a point-threshold unlock.
type Milestone struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Threshold   int       `gorm:"not null;index" json:"threshold"`
	Icon        string    `gorm:"size:100" json:"icon"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Milestone) TableName() string {
	return "milestones"
}

// UserMilestone records a milestone reached by a user, at most once per
// (user, milestone) pair.
type UserMilestone struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_milestone" json:"user_id"`
	MilestoneID uint      `gorm:"not null;uniqueIndex:idx_user_milestone" json:"milestone_id"`
	AchievedAt  time.Time `json:"achieved_at"`

	User      *UserProfile `gorm:"foreignKey:UserID" json:"-"`
	Milestone *Milestone   `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
}

func (UserMilestone) TableName() string {
	return "user_milestones"
}

// QuestCompletionResult is returned for every quest completed by a single
// processed activity event.
type QuestCompletionResult struct {
	QuestID            uint        `json:"quest_id"`
	QuestTitle         string      `json:"quest_title"`
	PointsEarned       int         `json:"points_earned"`
	BadgeEarned        *Badge      `json:"badge_earned,omitempty"`
	NewTotalPoints     int         `json:"new_total_points"`
	MilestonesUnlocked []Milestone `json:"milestones_unlocked,omitempty"`
}
