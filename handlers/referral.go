// handlers/referral.go
package handlers

import (
	"errors"

	"pollquest/database"
	"pollquest/models"
	"pollquest/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ApplyReferralRequest struct {
	WalletAddress string `json:"walletAddress"`
	ReferralCode  string `json:"referralCode"`
}

// ApplyReferral binds an existing profile to a referrer's code. The referral
// stays pending until the referred wallet's first counted on-chain activity.
// POST /api/referral/apply
func ApplyReferral(c *fiber.Ctx) error {
	var req ApplyReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ReferralCode == "" {
		return c.Status(400).JSON(fiber.Map{"error": "referralCode is required"})
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
	if profile.ReferredBy != "" {
		return c.Status(400).JSON(fiber.Map{"error": "Wallet already referred"})
	}

	if err := applyReferralCode(db, &profile, req.ReferralCode); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "referred_by": profile.ReferredBy})
}

// GetReferrals lists the wallet's outbound referrals and their statuses.
// GET /api/referral?wallet=0x...
func GetReferrals(c *fiber.Ctx) error {
	wallet := utils.NormalizeWallet(c.Query("wallet"))
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	db := database.GetDB()
	var referrals []models.Referral
	if err := db.Where("referrer_wallet = ?", wallet).
		Order("created_at DESC").
		Find(&referrals).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch referrals"})
	}

	completed := 0
	for _, r := range referrals {
		if r.Status == models.ReferralCompleted || r.Status == models.ReferralRewarded {
			completed++
		}
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"referrals": referrals,
		"total":     len(referrals),
		"completed": completed,
	})
}
