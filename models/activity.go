// models/activity.go
package models

import "time"

// Activity types accepted by the sync endpoint.
const (
	ActivityPollVote      = "poll_vote"
	ActivityPollCreate    = "poll_create"
	ActivitySurveyRespond = "survey_respond"
	ActivitySurveyCreate  = "survey_create"
	ActivityReferral      = "referral"
	ActivityShare         = "share"
)

// ActivityEvent is one relayed on-chain (or social) action. Transient: it
// drives a single engine call and is retained only as an audit row.
type ActivityEvent struct {
	WalletAddress   string `json:"walletAddress"`
	ActivityType    string `json:"activityType"`
	OnChainID       string `json:"onChainId,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	Category        string `json:"category,omitempty"`
	PollID          string `json:"pollId,omitempty"`
}

// ActivitySyncRecord is the audit/idempotency log for processed events.
// Unique on (wallet, activity_type, on_chain_id) so a re-delivered on-chain
// event is recognized and dropped.
type ActivitySyncRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	WalletAddress   string    `gorm:"not null;uniqueIndex:idx_sync_event;size:64" json:"wallet_address"`
	ActivityType    string    `gorm:"not null;uniqueIndex:idx_sync_event;size:30" json:"activity_type"`
	OnChainID       string    `gorm:"uniqueIndex:idx_sync_event;size:100" json:"on_chain_id"`
	TransactionHash string    `gorm:"size:100" json:"transaction_hash,omitempty"`
	PollCategory    string    `gorm:"size:50" json:"poll_category,omitempty"`
	PollID          string    `gorm:"size:100" json:"poll_id,omitempty"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

func (ActivitySyncRecord) TableName() string {
	return "activity_sync_records"
}

// Referral statuses.
const (
	ReferralPending   = "pending"
	ReferralCompleted = "completed"
	ReferralRewarded  = "rewarded"
)

// Referral links a referred wallet to its referrer. Pending until the
// referred user's first processed on-chain activity.
type Referral struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferrerWallet string    `gorm:"not null;index;size:64" json:"referrer_wallet"`
	ReferredWallet string    `gorm:"not null;uniqueIndex;size:64" json:"referred_wallet"`
	CodeUsed       string    `gorm:"not null;size:16" json:"code_used"`
	Status         string    `gorm:"not null;default:'pending';index;size:20" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Referral) TableName() string {
	return "referrals"
}

// UserStats are all-time aggregates recomputed on demand; there is no cache.
type UserStats struct {
	TotalVotes         int `json:"total_votes"`
	PollsCreated       int `json:"polls_created"`
	UniqueCategories   int `json:"unique_categories"`
	CompletedReferrals int `json:"completed_referrals"`
	CurrentStreak      int `json:"current_streak"`
}
