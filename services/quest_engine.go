// services/quest_engine.go - quest progress and reward issuance
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pollquest/models"
	"pollquest/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralBonusPoints is paid to the referrer when a referred wallet submits
// its first counted on-chain activity.
const ReferralBonusPoints = 25

// QuestEngine is the single source of truth for quest progress and reward
// issuance. Every balance change goes through it paired with a ledger row,
// inside one transaction.
type QuestEngine struct {
	db *gorm.DB
}

var questEngine *QuestEngine

// InitQuestEngine initializes the singleton engine.
func InitQuestEngine(db *gorm.DB) {
	questEngine = NewQuestEngine(db)
}

// GetQuestEngine returns the initialized engine.
func GetQuestEngine() *QuestEngine {
	return questEngine
}

func NewQuestEngine(db *gorm.DB) *QuestEngine {
	return &QuestEngine{db: db}
}

// questBucket maps an activity type to the quest type it advances.
// Unmapped types (share) are a no-op for quests.
func questBucket(activityType string) string {
	switch activityType {
	case models.ActivityPollVote, models.ActivitySurveyRespond:
		return models.QuestTypePollParticipation
	case models.ActivityPollCreate, models.ActivitySurveyCreate:
		return models.QuestTypePollCreation
	case models.ActivityReferral:
		return models.QuestTypeSocialReferral
	}
	return ""
}

// eventSatisfies reports whether an activity type can advance a requirement
// kind. Vote events count toward vote totals and category coverage, creation
// events toward poll counts, referral events toward referral counts. Streak
// requirements advance on any counted activity.
func eventSatisfies(reqType, activityType string) bool {
	switch reqType {
	case models.RequirementVoteCount, models.RequirementUniqueCategories:
		return activityType == models.ActivityPollVote || activityType == models.ActivitySurveyRespond
	case models.RequirementPollCount:
		return activityType == models.ActivityPollCreate || activityType == models.ActivitySurveyCreate
	case models.RequirementReferralCount:
		return activityType == models.ActivityReferral
	case models.RequirementConsecutiveDays:
		return true
	}
	return false
}

func statValue(stats models.UserStats, reqType string) int {
	switch reqType {
	case models.RequirementVoteCount:
		return stats.TotalVotes
	case models.RequirementPollCount:
		return stats.PollsCreated
	case models.RequirementReferralCount:
		return stats.CompletedReferrals
	case models.RequirementUniqueCategories:
		return stats.UniqueCategories
	case models.RequirementConsecutiveDays:
		return stats.CurrentStreak
	}
	return 0
}

// StreakBonus returns the daily streak bonus for a streak length.
func StreakBonus(streak int) int {
	switch {
	case streak < 3:
		return 0
	case streak < 7:
		return 5
	case streak < 14:
		return 10
	case streak < 30:
		return 15
	default:
		return 25
	}
}

// activeQuests scopes a query to quests active at now.
func (e *QuestEngine) activeQuests(now time.Time) *gorm.DB {
	return e.db.Model(&models.Quest{}).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now)
}

// GetUserStats re-aggregates the user's all-time counters. No caching; data
// volumes per wallet stay small.
func (e *QuestEngine) GetUserStats(wallet string) (models.UserStats, error) {
	wallet = utils.NormalizeWallet(wallet)
	var stats models.UserStats

	voteTypes := []string{models.ActivityPollVote, models.ActivitySurveyRespond}
	createTypes := []string{models.ActivityPollCreate, models.ActivitySurveyCreate}

	var votes int64
	if err := e.db.Model(&models.ActivitySyncRecord{}).
		Where("wallet_address = ? AND activity_type IN ?", wallet, voteTypes).
		Count(&votes).Error; err != nil {
		return stats, err
	}

	var polls int64
	if err := e.db.Model(&models.ActivitySyncRecord{}).
		Where("wallet_address = ? AND activity_type IN ?", wallet, createTypes).
		Count(&polls).Error; err != nil {
		return stats, err
	}

	var categories int64
	if err := e.db.Model(&models.ActivitySyncRecord{}).
		Where("wallet_address = ? AND activity_type IN ? AND poll_category <> ''", wallet, voteTypes).
		Distinct("poll_category").
		Count(&categories).Error; err != nil {
		return stats, err
	}

	var referrals int64
	if err := e.db.Model(&models.Referral{}).
		Where("referrer_wallet = ? AND status IN ?", wallet, []string{models.ReferralCompleted, models.ReferralRewarded}).
		Count(&referrals).Error; err != nil {
		return stats, err
	}

	stats.TotalVotes = int(votes)
	stats.PollsCreated = int(polls)
	stats.UniqueCategories = int(categories)
	stats.CompletedReferrals = int(referrals)

	var profile models.UserProfile
	if err := e.db.Where("wallet_address = ?", wallet).First(&profile).Error; err == nil {
		stats.CurrentStreak = profile.CurrentStreak
	}

	return stats, nil
}

// GetQuestsWithProgress returns every active quest with the wallet's
// progress view. Works for unknown wallets too (all-zero progress).
func (e *QuestEngine) GetQuestsWithProgress(wallet string) ([]models.QuestWithProgress, error) {
	wallet = utils.NormalizeWallet(wallet)
	now := time.Now().UTC()

	var quests []models.Quest
	if err := e.activeQuests(now).
		Preload("BadgeReward").
		Order("sort_order ASC, id ASC").
		Find(&quests).Error; err != nil {
		return nil, err
	}

	stats, err := e.GetUserStats(wallet)
	if err != nil {
		return nil, err
	}

	progressByQuest := map[uint]models.UserQuestProgress{}
	var profile models.UserProfile
	if err := e.db.Where("wallet_address = ?", wallet).First(&profile).Error; err == nil {
		var rows []models.UserQuestProgress
		if err := e.db.Where("user_id = ?", profile.ID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			progressByQuest[row.QuestID] = row
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := make([]models.QuestWithProgress, 0, len(quests))
	for _, quest := range quests {
		req := quest.Requirements()
		row := progressByQuest[quest.ID]

		canRepeat := quest.CanRepeat(row.CompletedCount)
		inWindow := quest.InTimeWindow(row.LastCompletedAt, now)

		var current int
		switch {
		case !canRepeat || !inWindow:
			// Already completed for this period (or forever): render as done.
			current = req.Target
		case req.PeriodScoped():
			current = row.ProgressCount
		default:
			current = statValue(stats, req.Type)
		}

		progress := models.QuestProgress{
			QuestID:         quest.ID,
			CurrentValue:    current,
			Target:          req.Target,
			PercentComplete: models.ProgressPercent(current, req.Target),
			IsComplete:      req.Target > 0 && current >= req.Target,
			CompletedCount:  row.CompletedCount,
		}
		progress.CanComplete = canRepeat && inWindow && !progress.IsComplete
		if row.LastCompletedAt != nil {
			progress.LastCompletedAt = row.LastCompletedAt.UTC().Format(time.RFC3339)
		}

		result = append(result, models.QuestWithProgress{Quest: quest, Progress: progress})
	}

	return result, nil
}

// ProcessActivity runs one relayed event through the engine: audit dedup,
// referral settlement, quest progress for the matching bucket, then the
// daily streak. Returns the quests completed by this event.
func (e *QuestEngine) ProcessActivity(event models.ActivityEvent) ([]models.QuestCompletionResult, error) {
	wallet := utils.NormalizeWallet(event.WalletAddress)
	event.WalletAddress = wallet

	var profile models.UserProfile
	if err := e.db.Where("wallet_address = ?", wallet).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Profile creation belongs to the profile API, not the sync path.
			return nil, nil
		}
		return nil, err
	}

	fresh, err := e.recordSync(event)
	if err != nil {
		return nil, err
	}
	if !fresh {
		// Re-delivered on-chain event; already counted.
		return nil, nil
	}

	// Aggregate after the audit row has landed, so the all-time stats
	// already include this event exactly once.
	stats, err := e.GetUserStats(wallet)
	if err != nil {
		return nil, err
	}

	bucket := questBucket(event.ActivityType)
	if bucket == "" {
		return nil, nil
	}

	// A referred wallet's first counted on-chain action settles its referral.
	if event.ActivityType != models.ActivityReferral {
		if err := e.settleReferral(event); err != nil {
			log.Printf("Referral settlement failed for %s: %v", wallet, err)
		}
	}

	var quests []models.Quest
	if err := e.activeQuests(time.Now().UTC()).
		Where("quest_type = ?", bucket).
		Preload("BadgeReward").
		Order("sort_order ASC, id ASC").
		Find(&quests).Error; err != nil {
		return nil, err
	}

	results := []models.QuestCompletionResult{}
	for i := range quests {
		res, err := e.updateQuestProgress(&profile, &quests[i], stats, event)
		if err != nil {
			return results, err
		}
		if res != nil {
			results = append(results, *res)
		}
	}

	if err := e.UpdateStreak(&profile); err != nil {
		return results, err
	}

	return results, nil
}

// recordSync writes the audit row. Returns false when the event was already
// recorded (same wallet, type and on-chain id). Events without an on-chain
// id get a synthetic one and are never deduplicated.
func (e *QuestEngine) recordSync(event models.ActivityEvent) (bool, error) {
	onChainID := event.OnChainID
	if onChainID == "" {
		onChainID = "local:" + uuid.New().String()
	} else {
		var existing models.ActivitySyncRecord
		err := e.db.Where("wallet_address = ? AND activity_type = ? AND on_chain_id = ?",
			event.WalletAddress, event.ActivityType, event.OnChainID).
			First(&existing).Error
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
	}

	record := models.ActivitySyncRecord{
		WalletAddress:   event.WalletAddress,
		ActivityType:    event.ActivityType,
		OnChainID:       onChainID,
		TransactionHash: event.TransactionHash,
		PollCategory:    strings.ToLower(event.Category),
		PollID:          event.PollID,
	}
	if err := e.db.Create(&record).Error; err != nil {
		if event.OnChainID != "" {
			// Re-fetch to tell a lost unique-index race from a genuine
			// datastore failure; only an existing row is a replay.
			var existing models.ActivitySyncRecord
			if ferr := e.db.Where("wallet_address = ? AND activity_type = ? AND on_chain_id = ?",
				event.WalletAddress, event.ActivityType, event.OnChainID).
				First(&existing).Error; ferr == nil {
				return false, nil
			}
		}
		return false, err
	}
	return true, nil
}

// settleReferral completes a pending referral for the event's wallet, pays
// the referrer, and feeds the referrer's social quests.
func (e *QuestEngine) settleReferral(event models.ActivityEvent) error {
	var referral models.Referral
	err := e.db.Where("referred_wallet = ? AND status = ?", event.WalletAddress, models.ReferralPending).
		First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var referrer models.UserProfile
	if err := e.db.Where("wallet_address = ?", referral.ReferrerWallet).First(&referrer).Error; err != nil {
		return err
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Referral{}).Where("id = ?", referral.ID).
			Update("status", models.ReferralRewarded).Error; err != nil {
			return err
		}

		ledger := models.PointTransaction{
			UserID:      referrer.ID,
			Amount:      ReferralBonusPoints,
			Type:        models.TxReferralBonus,
			ReferenceID: &referral.ID,
			Description: "Referral completed: " + referral.ReferredWallet,
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		return tx.Model(&models.UserProfile{}).Where("id = ?", referrer.ID).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", ReferralBonusPoints)).Error
	})
	if err != nil {
		return err
	}

	// Advance the referrer's social_referral quests. The synthetic on-chain
	// id keeps this idempotent per referred wallet.
	_, err = e.ProcessActivity(models.ActivityEvent{
		WalletAddress: referral.ReferrerWallet,
		ActivityType:  models.ActivityReferral,
		OnChainID:     "referral:" + referral.ReferredWallet,
	})
	if err != nil {
		log.Printf("Referrer quest update failed for %s: %v", referral.ReferrerWallet, err)
	}
	return nil
}

// updateQuestProgress advances one quest for one event. Returns a completion
// result when this event finished the quest, nil otherwise.
func (e *QuestEngine) updateQuestProgress(profile *models.UserProfile, quest *models.Quest, stats models.UserStats, event models.ActivityEvent) (*models.QuestCompletionResult, error) {
	req := quest.Requirements()

	if !eventSatisfies(req.Type, event.ActivityType) {
		return nil, nil
	}
	if req.Category != "" && !strings.EqualFold(event.Category, req.Category) {
		return nil, nil
	}

	var row models.UserQuestProgress
	err := e.db.Where("user_id = ? AND quest_id = ?", profile.ID, quest.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.UserQuestProgress{UserID: profile.ID, QuestID: quest.ID}
		if cerr := e.db.Create(&row).Error; cerr != nil {
			// Concurrent first activity created it; re-fetch.
			if ferr := e.db.Where("user_id = ? AND quest_id = ?", profile.ID, quest.ID).First(&row).Error; ferr != nil {
				return nil, cerr
			}
		}
	} else if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !quest.CanRepeat(row.CompletedCount) || !quest.InTimeWindow(row.LastCompletedAt, now) {
		return nil, nil
	}

	var newValue int
	if req.PeriodScoped() {
		newValue = row.ProgressCount + 1
	} else {
		// All-time stats already include this event's audit row.
		newValue = statValue(stats, req.Type)
	}

	if req.Target > 0 && newValue >= req.Target {
		return e.completeQuest(profile, quest, &row, row.CompletedCount+1)
	}

	if err := e.db.Model(&models.UserQuestProgress{}).Where("id = ?", row.ID).
		Update("progress_count", newValue).Error; err != nil {
		return nil, err
	}
	return nil, nil
}

// completeQuest applies the full completion flow atomically: progress reset,
// ledger row, balance bump, badge, milestones.
func (e *QuestEngine) completeQuest(profile *models.UserProfile, quest *models.Quest, row *models.UserQuestProgress, newCompletedCount int) (*models.QuestCompletionResult, error) {
	now := time.Now().UTC()
	result := &models.QuestCompletionResult{
		QuestID:      quest.ID,
		QuestTitle:   quest.Title,
		PointsEarned: quest.PointReward,
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserQuestProgress{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"progress_count":    0,
				"completed_count":   newCompletedCount,
				"last_completed_at": now,
			}).Error; err != nil {
			return err
		}

		questRef := quest.ID
		ledger := models.PointTransaction{
			UserID:      profile.ID,
			Amount:      quest.PointReward,
			Type:        models.TxQuestCompletion,
			ReferenceID: &questRef,
			Description: "Completed quest: " + quest.Title,
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.UserProfile{}).Where("id = ?", profile.ID).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", quest.PointReward)).Error; err != nil {
			return err
		}

		var updated models.UserProfile
		if err := tx.First(&updated, profile.ID).Error; err != nil {
			return err
		}
		profile.TotalPoints = updated.TotalPoints
		result.NewTotalPoints = updated.TotalPoints

		if quest.BadgeRewardID != nil {
			earned, badge, err := awardBadge(tx, profile.ID, *quest.BadgeRewardID)
			if err != nil {
				return err
			}
			if earned {
				result.BadgeEarned = badge
			}
		}

		unlocked, err := checkMilestones(tx, profile.ID, updated.TotalPoints)
		if err != nil {
			return err
		}
		result.MilestonesUnlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	row.ProgressCount = 0
	row.CompletedCount = newCompletedCount
	row.LastCompletedAt = &now
	return result, nil
}

// awardBadge grants a badge at most once. Returns whether this call earned
// it, plus the badge metadata.
func awardBadge(tx *gorm.DB, userID, badgeID uint) (bool, *models.Badge, error) {
	var badge models.Badge
	if err := tx.First(&badge, badgeID).Error; err != nil {
		return false, nil, err
	}

	var existing models.UserBadge
	err := tx.Where("user_id = ? AND badge_id = ?", userID, badgeID).First(&existing).Error
	if err == nil {
		return false, &badge, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, err
	}

	earned := models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: time.Now().UTC()}
	if cerr := tx.Create(&earned).Error; cerr != nil {
		// Unique race: someone else just earned it.
		if ferr := tx.Where("user_id = ? AND badge_id = ?", userID, badgeID).First(&existing).Error; ferr == nil {
			return false, &badge, nil
		}
		return false, nil, cerr
	}
	return true, &badge, nil
}

// checkMilestones records every active milestone the new total has crossed
// and the user has not yet achieved.
func checkMilestones(tx *gorm.DB, userID uint, totalPoints int) ([]models.Milestone, error) {
	var eligible []models.Milestone
	if err := tx.Where("is_active = ? AND threshold <= ?", true, totalPoints).
		Order("threshold ASC").
		Find(&eligible).Error; err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	var achievedIDs []uint
	if err := tx.Model(&models.UserMilestone{}).Where("user_id = ?", userID).
		Pluck("milestone_id", &achievedIDs).Error; err != nil {
		return nil, err
	}
	achieved := make(map[uint]bool, len(achievedIDs))
	for _, id := range achievedIDs {
		achieved[id] = true
	}

	var unlocked []models.Milestone
	for _, milestone := range eligible {
		if achieved[milestone.ID] {
			continue
		}
		record := models.UserMilestone{
			UserID:      userID,
			MilestoneID: milestone.ID,
			AchievedAt:  time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			// Unique race: concurrent award, skip.
			continue
		}
		unlocked = append(unlocked, milestone)
	}
	return unlocked, nil
}

// UpdateStreak advances the daily streak: consecutive day increments it,
// a gap resets to 1, same-day activity is a no-op. Tiered bonuses are paid
// with their ledger row in the same transaction as the profile save.
func (e *QuestEngine) UpdateStreak(profile *models.UserProfile) error {
	now := time.Now().UTC()
	today := now.Format("2006-01-02")
	if profile.LastActivityDate == today {
		return nil
	}

	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	newStreak := 1
	if profile.LastActivityDate == yesterday {
		newStreak = profile.CurrentStreak + 1
	}

	longest := profile.LongestStreak
	if newStreak > longest {
		longest = newStreak
	}

	bonus := StreakBonus(newStreak)

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserProfile{}).Where("id = ?", profile.ID).
			Updates(map[string]interface{}{
				"current_streak":     newStreak,
				"longest_streak":     longest,
				"last_activity_date": today,
			}).Error; err != nil {
			return err
		}

		if bonus > 0 {
			ledger := models.PointTransaction{
				UserID:      profile.ID,
				Amount:      bonus,
				Type:        models.TxStreakBonus,
				Description: fmt.Sprintf("%d-day streak bonus", newStreak),
			}
			if err := tx.Create(&ledger).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.UserProfile{}).Where("id = ?", profile.ID).
				UpdateColumn("total_points", gorm.Expr("total_points + ?", bonus)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	profile.CurrentStreak = newStreak
	profile.LongestStreak = longest
	profile.LastActivityDate = today
	profile.TotalPoints += bonus
	return nil
}
