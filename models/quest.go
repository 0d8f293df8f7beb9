// models/quest.go
package models

import (
	"math"
	"time"
)

// Quest types group quests by the kind of on-chain activity that advances them.
const (
	QuestTypePollParticipation = "poll_participation"
	QuestTypePollCreation      = "poll_creation"
	QuestTypeSocialReferral    = "social_referral"
)

// Quest categories control the repeat/reset cadence.
const (
	CategoryDaily   = "daily"
	CategoryWeekly  = "weekly"
	CategoryMonthly = "monthly"
	CategoryOneTime = "one-time"
	CategorySpecial = "special"
)

// Requirement kinds. Unknown kinds are treated as zero progress by the engine.
const (
	RequirementVoteCount        = "vote_count"
	RequirementPollCount        = "poll_count"
	RequirementReferralCount    = "referral_count"
	RequirementUniqueCategories = "unique_categories"
	RequirementConsecutiveDays  = "consecutive_days"
)

// Requirement timeframes.
const (
	TimeframeDay     = "day"
	TimeframeWeek    = "week"
	TimeframeMonth   = "month"
	TimeframeAllTime = "all_time"
)

// Quest is an operator-defined quest. Read-only to the engine; created and
// edited through the admin API or the importer.
type Quest struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null;size:200" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	QuestType   string `gorm:"not null;index;size:30" json:"quest_type"`
	Category    string `gorm:"not null;size:20" json:"category"`

	// Requirement descriptor
	RequirementType string `gorm:"not null;size:30" json:"requirement_type"`
	Target          int    `gorm:"not null" json:"target"`
	PollCategory    string `gorm:"size:50" json:"poll_category,omitempty"` // optional filter
	Timeframe       string `gorm:"size:10" json:"timeframe,omitempty"`

	// Rewards
	PointReward   int   `gorm:"default:0" json:"point_reward"`
	BadgeRewardID *uint `gorm:"index" json:"badge_reward_id,omitempty"`

	// Scheduling
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	MaxCompletions int        `gorm:"default:0" json:"max_completions"` // 0 = unlimited
	SortOrder      int        `gorm:"default:0" json:"sort_order"`
	// No default tag: GORM drops zero-value fields carrying one from the
	// INSERT, which would silently flip a quest staged inactive to active.
	IsActive bool `gorm:"index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BadgeReward *Badge `gorm:"foreignKey:BadgeRewardID" json:"badge_reward,omitempty"`
}

func (Quest) TableName() string {
	return "quests"
}

// QuestRequirements is the typed view of a quest's requirement fields.
type QuestRequirements struct {
	Type      string `json:"type"`
	Target    int    `json:"target"`
	Category  string `json:"category,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
}

// Requirements returns the quest's requirement descriptor. Missing timeframes
// default by category: daily/weekly/monthly quests are period-scoped, others
// count all-time.
func (q *Quest) Requirements() QuestRequirements {
	tf := q.Timeframe
	if tf == "" {
		switch q.Category {
		case CategoryDaily:
			tf = TimeframeDay
		case CategoryWeekly:
			tf = TimeframeWeek
		case CategoryMonthly:
			tf = TimeframeMonth
		default:
			tf = TimeframeAllTime
		}
	}
	return QuestRequirements{
		Type:      q.RequirementType,
		Target:    q.Target,
		Category:  q.PollCategory,
		Timeframe: tf,
	}
}

// PeriodScoped reports whether progress is tracked per calendar period
// rather than against all-time aggregates.
func (r QuestRequirements) PeriodScoped() bool {
	switch r.Timeframe {
	case TimeframeDay, TimeframeWeek, TimeframeMonth:
		return true
	}
	return false
}

// ProgressPercent rounds current/target to the nearest percent, clamped to
// [0,100]. A non-positive target means there is nothing left to do.
func ProgressPercent(current, target int) int {
	if target <= 0 {
		return 100
	}
	pct := int(math.Round(float64(current) / float64(target) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// CanRepeat reports whether the quest may be completed again after
// completedCount prior completions.
func (q *Quest) CanRepeat(completedCount int) bool {
	if q.Category == CategoryOneTime {
		return completedCount == 0
	}
	if q.MaxCompletions > 0 {
		return completedCount < q.MaxCompletions
	}
	return true
}

// InTimeWindow reports whether the quest is eligible again at now given its
// last completion. Daily/weekly/monthly quests reset at the start of the
// current UTC day / ISO week (Monday 00:00 UTC) / month; everything else is
// always in-window.
func (q *Quest) InTimeWindow(lastCompletedAt *time.Time, now time.Time) bool {
	if lastCompletedAt == nil {
		return true
	}
	now = now.UTC()
	var periodStart time.Time
	switch q.Category {
	case CategoryDaily:
		periodStart = StartOfDay(now)
	case CategoryWeekly:
		periodStart = StartOfWeek(now)
	case CategoryMonthly:
		periodStart = StartOfMonth(now)
	default:
		return true
	}
	return lastCompletedAt.UTC().Before(periodStart)
}

// StartOfDay returns midnight UTC of t's day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns Monday 00:00 UTC of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	t = StartOfDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// StartOfMonth returns the first of t's month, 00:00 UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// UserQuestProgress tracks one user's progress on one quest. Created lazily
// on first relevant activity, never deleted.
type UserQuestProgress struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;uniqueIndex:idx_user_quest" json:"user_id"`
	QuestID         uint       `gorm:"not null;uniqueIndex:idx_user_quest" json:"quest_id"`
	ProgressCount   int        `gorm:"default:0" json:"progress_count"`
	CompletedCount  int        `gorm:"default:0" json:"completed_count"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  *UserProfile `gorm:"foreignKey:UserID" json:"-"`
	Quest *Quest       `gorm:"foreignKey:QuestID" json:"-"`
}

func (UserQuestProgress) TableName() string {
	return "user_quest_progress"
}

// QuestProgress is the per-quest view served to clients.
type QuestProgress struct {
	QuestID         uint   `json:"quest_id"`
	CurrentValue    int    `json:"current_value"`
	Target          int    `json:"target"`
	PercentComplete int    `json:"percent_complete"`
	IsComplete      bool   `json:"is_complete"`
	CanComplete     bool   `json:"can_complete"`
	CompletedCount  int    `json:"completed_count"`
	LastCompletedAt string `json:"last_completed_at,omitempty"`
}

// QuestWithProgress pairs a quest definition with one user's progress view.
type QuestWithProgress struct {
	Quest    Quest         `json:"quest"`
	Progress QuestProgress `json:"progress"`
}
