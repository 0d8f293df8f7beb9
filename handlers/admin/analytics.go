// handlers/admin/analytics.go
package admin

import (
	"errors"
	"time"

	"pollquest/database"
	"pollquest/models"
	"pollquest/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetAnalytics returns operator-facing totals.
// GET /api/admin/analytics
func GetAnalytics(c *fiber.Ctx) error {
	db := database.GetDB()

	var profiles, events, completions, redemptions int64
	db.Model(&models.UserProfile{}).Count(&profiles)
	db.Model(&models.ActivitySyncRecord{}).Count(&events)
	db.Model(&models.PointTransaction{}).Where("type = ?", models.TxQuestCompletion).Count(&completions)
	db.Model(&models.RewardRedemption{}).Count(&redemptions)

	var pointsIssued, pointsSpent int64
	db.Model(&models.PointTransaction{}).Where("amount > 0").
		Select("COALESCE(SUM(amount), 0)").Scan(&pointsIssued)
	db.Model(&models.PointTransaction{}).Where("amount < 0").
		Select("COALESCE(SUM(-amount), 0)").Scan(&pointsSpent)

	since := time.Now().UTC().AddDate(0, 0, -1)
	var eventsLast24h int64
	db.Model(&models.ActivitySyncRecord{}).Where("created_at >= ?", since).Count(&eventsLast24h)

	var activeWallets24h int64
	db.Model(&models.ActivitySyncRecord{}).Where("created_at >= ?", since).
		Distinct("wallet_address").Count(&activeWallets24h)

	return c.JSON(fiber.Map{
		"success": true,
		"analytics": fiber.Map{
			"total_profiles":     profiles,
			"total_events":       events,
			"quest_completions":  completions,
			"redemptions":        redemptions,
			"points_issued":      pointsIssued,
			"points_spent":       pointsSpent,
			"events_last_24h":    eventsLast24h,
			"active_wallets_24h": activeWallets24h,
		},
	})
}

type AdjustPointsRequest struct {
	WalletAddress string `json:"walletAddress"`
	Amount        int    `json:"amount"`
	Reason        string `json:"reason"`
}

// AdjustPoints applies a manual point correction with its ledger row.
// POST /api/admin/points/adjust
func AdjustPoints(c *fiber.Ctx) error {
	var req AdjustPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Amount == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "amount must be non-zero"})
	}
	if req.Reason == "" {
		return c.Status(400).JSON(fiber.Map{"error": "reason is required"})
	}

	wallet := utils.NormalizeWallet(req.WalletAddress)
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	db := database.GetDB()
	var profile models.UserProfile
	if err := db.Where("wallet_address = ?", wallet).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if req.Amount < 0 {
			// Deductions must not push the balance negative.
			result := tx.Model(&models.UserProfile{}).
				Where("id = ? AND total_points >= ?", profile.ID, -req.Amount).
				UpdateColumn("total_points", gorm.Expr("total_points + ?", req.Amount))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fiber.NewError(400, "Insufficient points for deduction")
			}
		} else {
			if err := tx.Model(&models.UserProfile{}).Where("id = ?", profile.ID).
				UpdateColumn("total_points", gorm.Expr("total_points + ?", req.Amount)).Error; err != nil {
				return err
			}
		}

		ledger := models.PointTransaction{
			UserID:      profile.ID,
			Amount:      req.Amount,
			Type:        models.TxAdminAdjustment,
			Description: req.Reason,
		}
		return tx.Create(&ledger).Error
	})
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to adjust points"})
	}

	var updated models.UserProfile
	db.First(&updated, profile.ID)

	return c.JSON(fiber.Map{
		"success":      true,
		"total_points": updated.TotalPoints,
	})
}
