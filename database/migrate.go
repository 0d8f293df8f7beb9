// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"pollquest/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Quest{},
		&models.UserQuestProgress{},
		&models.PointTransaction{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Milestone{},
		&models.UserMilestone{},
		&models.ActivitySyncRecord{},
		&models.Referral{},
		&models.ShopItem{},
		&models.RewardRedemption{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes AutoMigrate does not cover
func createIndexes() {
	db := GetDB()
	log.Println("Creating indexes...")

	// Profile indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_profiles_points ON user_profiles(total_points DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_profiles_streak ON user_profiles(current_streak DESC)")

	// Quest indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_quests_active_type ON quests(is_active, quest_type)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_quests_sort ON quests(sort_order)")

	// Ledger indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON point_transactions(user_id, created_at DESC)")

	// Activity sync indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sync_wallet_type ON activity_sync_records(wallet_address, activity_type)")

	// Referral indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_referrals_referrer_status ON referrals(referrer_wallet, status)")

	log.Println("✅ Indexes created successfully")
}
