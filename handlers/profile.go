// handlers/profile.go
package handlers

import (
	"errors"
	"strings"

	"pollquest/database"
	"pollquest/models"
	"pollquest/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateProfileRequest struct {
	WalletAddress string `json:"walletAddress"`
	DisplayName   string `json:"displayName"`
	AvatarURL     string `json:"avatarUrl"`
	ReferralCode  string `json:"referralCode"` // code of the referrer, optional
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// GetProfile returns a wallet's profile.
// GET /api/profile/:wallet
func GetProfile(c *fiber.Ctx) error {
	wallet := utils.NormalizeWallet(c.Params("wallet"))
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

	return c.JSON(fiber.Map{
		"success": true,
		"profile": profile,
	})
}

// CreateProfile fetches or creates the profile for a wallet. Called on first
// wallet connection; safe under concurrent first connects via the unique
// constraint on wallet_address plus a re-fetch.
// POST /api/profile
func CreateProfile(c *fiber.Ctx) error {
	var req CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	wallet := utils.NormalizeWallet(req.WalletAddress)
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	db := database.GetDB()

	var existing models.UserProfile
	if err := db.Where("wallet_address = ?", wallet).First(&existing).Error; err == nil {
		return c.JSON(fiber.Map{"success": true, "profile": existing, "created": false})
	}

	profile := models.UserProfile{
		WalletAddress: wallet,
		DisplayName:   req.DisplayName,
		AvatarURL:     req.AvatarURL,
		ReferralCode:  generateReferralCode(),
	}

	if err := db.Create(&profile).Error; err != nil {
		// Concurrent first connect: the other request won, use its row.
		if ferr := db.Where("wallet_address = ?", wallet).First(&existing).Error; ferr == nil {
			return c.JSON(fiber.Map{"success": true, "profile": existing, "created": false})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create profile"})
	}

	if req.ReferralCode != "" {
		if err := applyReferralCode(db, &profile, req.ReferralCode); err != nil {
			// Profile creation stands; the referral just didn't bind.
			return c.JSON(fiber.Map{
				"success":        true,
				"profile":        profile,
				"created":        true,
				"referral_error": err.Error(),
			})
		}
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "profile": profile, "created": true})
}

// UpdateProfile changes display name and avatar.
// PUT /api/profile/:wallet
func UpdateProfile(c *fiber.Ctx) error {
	wallet := utils.NormalizeWallet(c.Params("wallet"))
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := database.GetDB()
	var profile models.UserProfile
	if err := db.Where("wallet_address = ?", wallet).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := db.Model(&profile).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true, "profile": profile})
}

// GetTransactions returns a page of the wallet's point ledger, newest first.
// GET /api/profile/:wallet/transactions?limit=20&offset=0
func GetTransactions(c *fiber.Ctx) error {
	wallet := utils.NormalizeWallet(c.Params("wallet"))
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}
	limit := clampInt(parseIntDefault(c.Query("limit"), 20), 1, 100)
	offset := maxInt(parseIntDefault(c.Query("offset"), 0), 0)

	db := database.GetDB()
	var profile models.UserProfile
	if err := db.Where("wallet_address = ?", wallet).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	var transactions []models.PointTransaction
	if err := db.Where("user_id = ?", profile.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&transactions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	var total int64
	db.Model(&models.PointTransaction{}).Where("user_id = ?", profile.ID).Count(&total)

	return c.JSON(fiber.Map{
		"success":      true,
		"transactions": transactions,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

func generateReferralCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

// applyReferralCode binds a freshly created profile to its referrer.
func applyReferralCode(db *gorm.DB, profile *models.UserProfile, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	var referrer models.UserProfile
	if err := db.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
		return errors.New("unknown referral code")
	}
	if referrer.ID == profile.ID {
		return errors.New("cannot refer yourself")
	}

	referral := models.Referral{
		ReferrerWallet: referrer.WalletAddress,
		ReferredWallet: profile.WalletAddress,
		CodeUsed:       code,
		Status:         models.ReferralPending,
	}
	if err := db.Create(&referral).Error; err != nil {
		return errors.New("wallet already referred")
	}

	if err := db.Model(profile).Update("referred_by", referrer.WalletAddress).Error; err != nil {
		return err
	}
	profile.ReferredBy = referrer.WalletAddress
	return nil
}
