package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pollquest/database"
	"pollquest/models"
	"pollquest/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testWallet  = "0x00000000000000000000000000000000000000aa"
	otherWallet = "0x00000000000000000000000000000000000000bb"
)

// setupApp wires a Fiber app with the public routes against an in-memory
// database.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
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
	))

	database.SetDB(db)
	services.InitQuestEngine(db)

	app := fiber.New()
	api := app.Group("/api")

	api.Post("/profile", CreateProfile)
	api.Get("/profile/:wallet", GetProfile)
	api.Put("/profile/:wallet", UpdateProfile)
	api.Get("/profile/:wallet/transactions", GetTransactions)

	api.Post("/quests/sync", SyncActivity)
	api.Get("/quests", GetQuests)
	api.Get("/quests/stats", GetStats)

	api.Get("/leaderboard", GetLeaderboard)

	api.Get("/shop", GetShopItems)
	api.Post("/shop/purchase", PurchaseItem)
	api.Get("/shop/redemptions", GetRedemptions)

	api.Post("/referral/apply", ApplyReferral)
	api.Get("/referral", GetReferrals)

	api.Get("/badges", GetBadges)
	api.Get("/milestones", GetMilestones)

	return app, db
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedProfile(t *testing.T, db *gorm.DB, wallet, code string) *models.UserProfile {
	t.Helper()
	profile := &models.UserProfile{WalletAddress: wallet, ReferralCode: code}
	require.NoError(t, db.Create(profile).Error)
	return profile
}
