// handlers/badges.go
package handlers

import (
	"errors"

	"pollquest/database"
	"pollquest/models"
	"pollquest/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetBadges returns the badge catalog with earned flags for a wallet.
// GET /api/badges?wallet=0x...
func GetBadges(c *fiber.Ctx) error {
	wallet := utils.NormalizeWallet(c.Query("wallet"))
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	db := database.GetDB()

	var catalog []models.Badge
	if err := db.Order("id ASC").Find(&catalog).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch badges"})
	}

	earnedMap := map[uint]models.UserBadge{}
	var profile models.UserProfile
	err := db.Where("wallet_address = ?", wallet).First(&profile).Error
	if err == nil {
		var earned []models.UserBadge
		if err := db.Where("user_id = ?", profile.ID).Find(&earned).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch earned badges"})
		}
		for _, ub := range earned {
			earnedMap[ub.BadgeID] = ub
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	badges := make([]fiber.Map, 0, len(catalog))
	for _, badge := range catalog {
		entry := fiber.Map{
			"id":          badge.ID,
			"name":        badge.Name,
			"description": badge.Description,
			"icon":        badge.Icon,
			"rarity":      badge.Rarity,
			"category":    badge.Category,
			"earned":      false,
		}
		if ub, ok := earnedMap[badge.ID]; ok {
			entry["earned"] = true
			entry["earned_at"] = ub.EarnedAt
		}
		badges = append(badges, entry)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"badges":  badges,
		"total":   len(catalog),
		"earned":  len(earnedMap),
	})
}

// GetMilestones returns milestones with achieved flags for a wallet.
// GET /api/milestones?wallet=0x...
func GetMilestones(c *fiber.Ctx) error {
	wallet := utils.NormalizeWallet(c.Query("wallet"))
	if !utils.IsValidWallet(wallet) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	db := database.GetDB()

	var milestones []models.Milestone
	if err := db.Where("is_active = ?", true).Order("threshold ASC").Find(&milestones).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch milestones"})
	}

	achievedMap := map[uint]models.UserMilestone{}
	totalPoints := 0
	var profile models.UserProfile
	err := db.Where("wallet_address = ?", wallet).First(&profile).Error
	if err == nil {
		totalPoints = profile.TotalPoints
		var achieved []models.UserMilestone
		if err := db.Where("user_id = ?", profile.ID).Find(&achieved).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achieved milestones"})
		}
		for _, um := range achieved {
			achievedMap[um.MilestoneID] = um
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	result := make([]fiber.Map, 0, len(milestones))
	for _, milestone := range milestones {
		entry := fiber.Map{
			"id":          milestone.ID,
			"name":        milestone.Name,
			"description": milestone.Description,
			"threshold":   milestone.Threshold,
			"icon":        milestone.Icon,
			"achieved":    false,
		}
		if um, ok := achievedMap[milestone.ID]; ok {
			entry["achieved"] = true
			entry["achieved_at"] = um.AchievedAt
		}
		result = append(result, entry)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"milestones":   result,
		"total_points": totalPoints,
	})
}
